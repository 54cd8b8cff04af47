package runctx

import (
	"context"
	"errors"
	"testing"
)

func TestWithRun(t *testing.T) {
	ctx := WithRun(context.Background(), "brake pads")
	run := FromContext(ctx)

	if run.Query != "brake pads" {
		t.Errorf("Expected query to be kept, got %q", run.Query)
	}
	if len(run.ID) != 12 {
		t.Errorf("Expected 12 hex chars, got %q", run.ID)
	}
	if other := FromContext(WithRun(context.Background(), "x")); other.ID == run.ID {
		t.Error("Expected distinct run IDs")
	}
}

func TestFromContext_NoRun(t *testing.T) {
	if got := FromContext(context.Background()).ID; got != "unknown" {
		t.Errorf("Expected placeholder ID, got %q", got)
	}
}

func TestWrap(t *testing.T) {
	ctx := WithRun(context.Background(), "q")
	base := errors.New("boom")

	err := Wrap(ctx, base)
	if !errors.Is(err, base) {
		t.Fatal("Expected wrapped error to match the original")
	}
	var re *RunError
	if !errors.As(err, &re) || re.RunID != FromContext(ctx).ID {
		t.Errorf("Expected RunError with run ID, got %v", err)
	}
	if Wrap(ctx, nil) != nil {
		t.Error("Expected nil to stay nil")
	}
}
