package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// SyncMode selects how the pipeline waits for the page after navigation and submission
type SyncMode string

const (
	// SyncReady polls for the expected selectors and proceeds as soon as one matches
	SyncReady SyncMode = "ready"
	// SyncDelay sleeps for the full wait budget
	SyncDelay SyncMode = "delay"
)

// ParseSyncMode validates a sync mode name
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case SyncReady, SyncDelay:
		return SyncMode(s), nil
	case "":
		return SyncReady, nil
	}
	return "", fmt.Errorf("invalid sync mode: %s (must be ready or delay)", s)
}

// WaitForAny polls page until some strategy of chains matches or budget elapses.
// It reports whether a match was seen. Locate errors are treated as "not yet".
func WaitForAny(ctx context.Context, page Page, budget, interval time.Duration, chains ...Chain) (bool, error) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	deadline := time.Now().Add(budget)

	for {
		for _, c := range chains {
			for _, s := range c.Strategies {
				elems, err := page.Locate(ctx, s.Selector)
				if err != nil {
					log.Debug().Err(err).Str("selector", s.Selector).Msg("Readiness probe failed")
					continue
				}
				if len(elems) > 0 {
					return true, nil
				}
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		if remaining < interval {
			interval = remaining
		}
		if err := page.Wait(ctx, interval); err != nil {
			return false, err
		}
	}
}

// WaitForDocument polls v until its generation moves past before or budget elapses.
// It reports whether the document was replaced and how much of budget is left.
func WaitForDocument(ctx context.Context, page Page, v Versioned, before int64, budget, interval time.Duration) (bool, time.Duration, error) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	deadline := time.Now().Add(budget)

	for {
		if v.Generation() != before {
			return true, max(time.Until(deadline), 0), nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, 0, nil
		}
		if err := page.Wait(ctx, min(interval, remaining)); err != nil {
			return false, 0, err
		}
	}
}
