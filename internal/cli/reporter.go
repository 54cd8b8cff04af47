package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/marketscan/internal/engine"
	"github.com/law-makers/marketscan/internal/ui"
	"github.com/law-makers/marketscan/pkg/models"
)

const nameWidth = 50

// consoleReporter prints pipeline progress for a person watching the terminal
type consoleReporter struct {
	out     io.Writer
	showBar bool
	bar     *progressbar.ProgressBar
}

func newConsoleReporter(out io.Writer, showBar bool) *consoleReporter {
	return &consoleReporter{out: out, showBar: showBar}
}

func (r *consoleReporter) Stage(msg string) {
	fmt.Fprintf(r.out, "%s %s\n", ui.Info("→"), msg)
}

func (r *consoleReporter) ListingsFound(s engine.Strategy, total, processing int) {
	fmt.Fprintf(r.out, "  Found listings with selector %s (%d on page)\n", ui.Bold(s.Selector), total)
	fmt.Fprintf(r.out, "  Processing %d listings...\n", processing)
	if r.showBar {
		r.bar = progressbar.NewOptions(processing,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("parsing"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
}

func (r *consoleReporter) ListingsMissing(debugPath string) {
	fmt.Fprintln(r.out, ui.Error("  No listings found on the page"))
	if debugPath != "" {
		fmt.Fprintf(r.out, "  Saved page markup to %s\n", debugPath)
	}
}

func (r *consoleReporter) ItemDone(index int, rec models.Record) {
	r.clearBar()
	fmt.Fprintf(r.out, "  %s %s\n", ui.Success("✓"), truncate(rec.Name, nameWidth))
	r.step()
}

func (r *consoleReporter) ItemFailed(index int, err error) {
	r.clearBar()
	fmt.Fprintf(r.out, "  %s listing %d: %v\n", ui.Error("✗"), index+1, err)
	r.step()
}

func (r *consoleReporter) clearBar() {
	if r.bar != nil {
		_ = r.bar.Clear()
	}
}

func (r *consoleReporter) step() {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *consoleReporter) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
