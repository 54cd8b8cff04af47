package models

import (
	"encoding/json"
	"time"
)

// Placeholder values used when a field could not be extracted from a listing
const (
	NameNotFound  = "name not found"
	PriceNotFound = "price not found"
)

// Record is one extracted product listing
type Record struct {
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"captured_at"`
}

// Dataset is the finalized, ordered set of records produced by one search.
// It has no mutators; records are copied on the way in and on the way out.
type Dataset struct {
	query       string
	generatedAt time.Time
	records     []Record
}

// NewDataset builds a Dataset from a snapshot of records
func NewDataset(query string, generatedAt time.Time, records []Record) *Dataset {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Dataset{
		query:       query,
		generatedAt: generatedAt,
		records:     cp,
	}
}

// Query returns the search text the dataset was produced for
func (d *Dataset) Query() string { return d.query }

// GeneratedAt returns the time the dataset was finalized
func (d *Dataset) GeneratedAt() time.Time { return d.generatedAt }

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of the records in discovery order
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	cp := make([]Record, len(d.records))
	copy(cp, d.records)
	return cp
}

// MarshalJSON exposes the dataset for export
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Query       string    `json:"query"`
		GeneratedAt time.Time `json:"generated_at"`
		Count       int       `json:"count"`
		Records     []Record  `json:"records"`
	}{
		Query:       d.query,
		GeneratedAt: d.generatedAt,
		Count:       len(d.records),
		Records:     d.Records(),
	})
}
