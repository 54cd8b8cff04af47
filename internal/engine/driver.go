package engine

import (
	"context"
	"time"
)

// KeyEnter is the key name passed to Element.Press to submit a form
const KeyEnter = "Enter"

// Locator finds elements matching a CSS selector.
// Zero matches is a valid outcome and must be returned as an empty slice, not an error.
type Locator interface {
	Locate(ctx context.Context, selector string) ([]Element, error)
}

// Element is a handle to a node on a live page. Locate searches its descendants.
type Element interface {
	Locator

	// Text returns the element's text content ("" when the node has none)
	Text(ctx context.Context) (string, error)

	// Attr returns an attribute value and whether the attribute is present
	Attr(ctx context.Context, name string) (string, bool, error)

	// Fill replaces the element's value with text
	Fill(ctx context.Context, text string) error

	// Press sends a single key to the element
	Press(ctx context.Context, key string) error
}

// Page is one navigable document owned by a session
type Page interface {
	Locator

	// Navigate loads url and blocks until the navigation settles or fails
	Navigate(ctx context.Context, url string) error

	// Wait suspends for d or until ctx is done
	Wait(ctx context.Context, d time.Duration) error

	// Content returns the current document markup
	Content(ctx context.Context) (string, error)

	// Close releases every resource held by the session. Safe to call more than once.
	Close() error
}

// Versioned is implemented by pages that can tell one loaded document from the next.
// Generation changes whenever a navigation or form submission replaces the document.
type Versioned interface {
	Generation() int64
}

// Launcher starts a new session for a single run
type Launcher interface {
	Launch(ctx context.Context) (Page, error)

	// Name identifies the engine in logs
	Name() string
}

// Sleep waits for d unless ctx finishes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
