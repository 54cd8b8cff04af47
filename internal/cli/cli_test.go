package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/marketscan/internal/app"
	"github.com/law-makers/marketscan/internal/engine"
	"github.com/law-makers/marketscan/pkg/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"Тормозные колодки передние", 9, "Тормозные..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	ds := models.NewDataset("pads", at, []models.Record{
		{Name: "Pads A", Price: "900 ₽", URL: "https://market.yandex.ru/product/a", CapturedAt: at},
		{Name: "Pads B", Price: models.PriceNotFound, CapturedAt: at},
	})

	var buf bytes.Buffer
	printSummary(&buf, &app.Result{Dataset: ds, Path: "results_pads_20240309_140507.csv"})
	out := buf.String()

	for _, want := range []string{
		"1. Pads A\n   Price: 900 ₽\n   Link: https://market.yandex.ru/product/a\n",
		"2. Pads B\n   Price: price not found\n   Link: \n",
		"Listings found: 2",
		"Results saved to results_pads_20240309_140507.csv",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := newConsoleReporter(&buf, false)

	r.Stage("Opening https://market.yandex.ru")
	r.ListingsFound(engine.Strategy{Name: "listings#2", Selector: `[class*="snippet"]`}, 24, 10)
	r.ItemDone(0, models.Record{Name: strings.Repeat("x", 60)})
	r.ItemFailed(1, errors.New("node detached"))
	r.ListingsMissing("debug.html")
	r.finish()

	out := buf.String()
	for _, want := range []string{
		"Opening https://market.yandex.ru",
		"(24 on page)",
		"Processing 10 listings",
		strings.Repeat("x", 50) + "...",
		"listing 2: node detached",
		"Saved page markup to debug.html",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("reporter output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_ProgressBar(t *testing.T) {
	var buf bytes.Buffer
	r := newConsoleReporter(&buf, true)
	r.ListingsFound(engine.Strategy{Selector: "article"}, 2, 2)
	if r.bar == nil {
		t.Fatal("Expected progress bar to be created")
	}
	r.ItemDone(0, models.Record{Name: "a"})
	r.ItemDone(1, models.Record{Name: "b"})
	r.finish()
	if r.bar != nil {
		t.Error("Expected progress bar to be released after finish")
	}
}

func TestSearch_EmptyQueryDoesNotRun(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader("   \n"))
	rootCmd.SetArgs([]string{"search"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "No query entered") {
		t.Errorf("Expected empty-query message, got:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Opening") {
		t.Error("Expected no pipeline stages for an empty query")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three\nfour\n\nfive", 9)
	want := "one two\nthree\nfour\n\nfive"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}
}
