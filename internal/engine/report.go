package engine

import "github.com/law-makers/marketscan/pkg/models"

// Reporter receives user-facing progress from a pipeline run
type Reporter interface {
	Stage(msg string)
	ListingsFound(strategy Strategy, total, processing int)
	ListingsMissing(debugPath string)
	ItemDone(index int, rec models.Record)
	ItemFailed(index int, err error)
}

// NopReporter discards every event
type NopReporter struct{}

func (NopReporter) Stage(string) {}
func (NopReporter) ListingsFound(Strategy, int, int) {}
func (NopReporter) ListingsMissing(string) {}
func (NopReporter) ItemDone(int, models.Record) {}
func (NopReporter) ItemFailed(int, error) {}
