// Package retry re-issues page fetches that fail for transient reasons.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// Config controls how often and how patiently a fetch is repeated
type Config struct {
	MaxAttempts    int           // including the first one
	InitialBackoff time.Duration // wait after the first failure
	MaxBackoff     time.Duration // cap for every wait
	Multiplier     float64       // growth factor between waits
	Jitter         float64       // fraction of each wait randomized, 0 disables
}

// DefaultConfig returns the policy used by the static engine
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.2,
	}
}

// StatusError is an HTTP response outside the 2xx range
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Temporary reports whether the server may answer differently on a later attempt
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Do calls fn until it succeeds, fails permanently, ctx ends or attempts run out
func Do(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := range attempts {
		if lastErr = fn(); lastErr == nil {
			if attempt > 0 {
				log.Debug().Int("attempts", attempt+1).Msg("Fetch succeeded after retry")
			}
			return nil
		}
		if !Retryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == attempts-1 {
			break
		}

		wait := cfg.wait(attempt)
		log.Debug().
			Err(lastErr).
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Dur("backoff", wait).
			Msg("Fetch failed, backing off")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

// Backoff returns the un-jittered wait that follows attempt (0-based)
func Backoff(attempt int, cfg Config) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	return time.Duration(min(d, float64(cfg.MaxBackoff)))
}

func (c Config) wait(attempt int) time.Duration {
	d := Backoff(attempt, c)
	if c.Jitter <= 0 || d <= 0 {
		return d
	}
	spread := float64(d) * c.Jitter
	return time.Duration(float64(d) - spread + rand.Float64()*2*spread)
}

// Retryable reports whether err is worth another attempt, meaning a temporary status
// or a transport failure. Local errors such as unparseable markup are final.
func Retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && !errors.Is(err, context.DeadlineExceeded)
}
