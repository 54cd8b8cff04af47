package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/marketscan/pkg/models"
	"github.com/rs/zerolog/log"
)

// FileTimestampLayout is the timestamp part of result file names
const FileTimestampLayout = "20060102_150405"

// Exporter persists a finalized dataset as one file in Dir
type Exporter struct {
	Dir    string
	Format string // "csv" or "json"
}

// Filename returns results_<query>_<YYYYMMDD_HHMMSS>.<ext>. Path separators in query become "_".
func Filename(query string, at time.Time, ext string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(query)
	return fmt.Sprintf("results_%s_%s.%s", safe, at.Format(FileTimestampLayout), ext)
}

// Export writes ds and returns the file path
func (e Exporter) Export(ds *models.Dataset) (string, error) {
	format := strings.ToLower(e.Format)
	if format == "" {
		format = "csv"
	}

	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, Filename(ds.Query(), ds.GeneratedAt(), format))

	var err error
	switch format {
	case "csv":
		err = SaveCSV(ds, path)
	case "json":
		err = SaveJSON(ds, path)
	default:
		return "", fmt.Errorf("unsupported format: %s", e.Format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", format, err)
	}

	log.Debug().Str("file", path).Int("records", ds.Len()).Msg("Results exported")
	return path, nil
}

// DebugWriter saves the markup of a page where no listings were found
type DebugWriter struct {
	Path     string
	BaseURL  string
	Markdown bool // also write a cleaned .md rendition next to Path
}

// Dump writes markup to Path, replacing any previous dump
func (d DebugWriter) Dump(ctx context.Context, markup string) (string, error) {
	if dir := filepath.Dir(d.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(d.Path, []byte(markup), 0644); err != nil {
		return "", err
	}

	if d.Markdown {
		mdPath := strings.TrimSuffix(d.Path, filepath.Ext(d.Path)) + ".md"
		md, err := ToMarkdown(markup, d.BaseURL)
		if err == nil {
			err = os.WriteFile(mdPath, []byte(md), 0644)
		}
		if err != nil {
			log.Warn().Err(err).Str("file", mdPath).Msg("Failed to write markdown rendition")
		}
	}

	return d.Path, nil
}
