// Package results accumulates extracted records for a single run.
package results

import (
	"errors"
	"sync"
	"time"

	"github.com/law-makers/marketscan/pkg/models"
)

// ErrFinalized is returned when the sink is used after Finalize
var ErrFinalized = errors.New("result sink already finalized")

// Sink is an append-only ordered buffer of records.
// It moves from collecting to finalized exactly once.
type Sink struct {
	mu        sync.Mutex
	records   []models.Record
	finalized bool
}

// NewSink creates an empty sink in the collecting state
func NewSink() *Sink {
	return &Sink{}
}

// Append adds a record to the end of the buffer
func (s *Sink) Append(r models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrFinalized
	}
	s.records = append(s.records, r)
	return nil
}

// Len returns the number of buffered records
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Finalize closes the sink and returns the dataset. An empty buffer yields an empty dataset.
func (s *Sink) Finalize(query string, at time.Time) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrFinalized
	}
	s.finalized = true
	return models.NewDataset(query, at, s.records), nil
}
