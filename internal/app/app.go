// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/marketscan/internal/config"
	"github.com/law-makers/marketscan/internal/engine"
	"github.com/law-makers/marketscan/internal/engine/dynamic"
	"github.com/law-makers/marketscan/internal/engine/static"
	"github.com/law-makers/marketscan/internal/metrics"
	"github.com/law-makers/marketscan/internal/retry"
	"github.com/law-makers/marketscan/internal/utils/output"
	"github.com/law-makers/marketscan/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Exporter persists a non-empty dataset and returns where it went
type Exporter interface {
	Export(ds *models.Dataset) (string, error)
}

// Result is the outcome of one search or replay
type Result struct {
	Dataset *models.Dataset
	// Path is the exported file, "" when nothing was exported
	Path string
}

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to release the HTTP client's idle connections.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	HTTPClient  *http.Client
	Launcher    engine.Launcher
	Exporter    Exporter
	Diagnostics engine.Diagnostics
	Chains      engine.Chains
	Metrics     *metrics.Metrics
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Initializes the HTTP client with proper timeouts
//   - Builds the selector chains from the configured selectors
//   - Creates the launcher for the configured engine
//   - Creates the result exporter and the diagnostics writer
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := setupLogger(cfg)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               proxyFunc(cfg.Proxy),
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	launcher, err := newLauncher(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("engine", launcher.Name()).Msg("Launcher initialized")

	app := &Application{
		Config:     cfg,
		Logger:     &logger,
		HTTPClient: httpClient,
		Launcher:   launcher,
		Exporter:   output.Exporter{Dir: cfg.OutputDir, Format: cfg.Format},
		Diagnostics: output.DebugWriter{
			Path:     cfg.DebugFile,
			BaseURL:  cfg.BaseURL,
			Markdown: cfg.DebugMarkdown,
		},
		Chains:    ChainsFromConfig(cfg.Selectors),
		Metrics:   metrics.New(),
		startTime: time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	log.Logger = zerolog.New(logWriter).With().Timestamp().Logger()
	return log.Logger
}

// proxyFunc routes HTTP requests through raw, or through the environment's proxy when raw is empty
func proxyFunc(raw string) func(*http.Request) (*url.URL, error) {
	if raw == "" {
		return http.ProxyFromEnvironment
	}
	u, err := url.Parse(raw)
	if err != nil {
		log.Warn().Err(err).Str("proxy", raw).Msg("Ignoring invalid proxy URL")
		return http.ProxyFromEnvironment
	}
	return http.ProxyURL(u)
}

func newLauncher(cfg *config.Config, client *http.Client) (engine.Launcher, error) {
	switch cfg.Engine {
	case config.EngineStatic:
		rc := retry.DefaultConfig()
		rc.MaxAttempts = cfg.RetryAttempts
		return static.NewLauncher(client, cfg.UserAgent, rc).WithHeaders(cfg.Headers), nil
	case config.EngineBrowser, "":
		return dynamic.NewLauncher(dynamic.Options{
			ChromePath:   cfg.ChromePath,
			Headless:     cfg.Headless,
			UserAgent:    cfg.UserAgent,
			Proxy:        cfg.Proxy,
			Headers:      cfg.Headers,
			WindowWidth:  cfg.WindowWidth,
			WindowHeight: cfg.WindowHeight,
			Timeout:      cfg.Timeout,
		}), nil
	}
	return nil, fmt.Errorf("unknown engine: %s", cfg.Engine)
}

// ChainsFromConfig turns the configured selector lists into lookup chains
func ChainsFromConfig(s config.Selectors) engine.Chains {
	return engine.Chains{
		SearchInput: engine.NewChain(engine.RoleSearchInput, s.SearchInput...),
		Listings:    engine.NewChain(engine.RoleListings, s.Listings...),
		Name:        engine.NewChain(engine.RoleName, s.Name...),
		Price:       engine.NewChain(engine.RolePrice, s.Price...),
		Link:        engine.NewChain(engine.RoleLink, s.Link...),
	}
}

func (a *Application) pipeline(rep engine.Reporter) *engine.Pipeline {
	sync, err := engine.ParseSyncMode(a.Config.Sync)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Falling back to ready sync mode")
		sync = engine.SyncReady
	}
	return engine.New(a.Launcher, engine.Options{
		BaseURL:      a.Config.BaseURL,
		Chains:       a.Chains,
		Sync:         sync,
		NavigateWait: a.Config.NavigateWait,
		SubmitWait:   a.Config.SubmitWait,
		TypeWait:     a.Config.TypeWait,
		PollInterval: a.Config.PollInterval,
		Linger:       a.Config.Linger,
		Diagnostics:  a.Diagnostics,
		Reporter:     a.Metrics.Reporter(rep),
	})
}

// Search runs one query end to end. The dataset is exported only when it holds records.
func (a *Application) Search(ctx context.Context, query string, rep engine.Reporter) (*Result, error) {
	start := time.Now()
	ds, err := a.pipeline(rep).Run(ctx, query)
	if err != nil {
		a.observe(metrics.OutcomeError, start)
		return nil, err
	}
	return a.finish(ds, start)
}

// finish exports ds and records the run outcome
func (a *Application) finish(ds *models.Dataset, start time.Time) (*Result, error) {
	res, err := a.export(ds)
	switch {
	case err != nil:
		a.observe(metrics.OutcomeError, start)
	case ds.Len() == 0:
		a.observe(metrics.OutcomeEmpty, start)
	default:
		a.observe(metrics.OutcomeOK, start)
	}
	return res, err
}

// observe records the run and refreshes the metrics file when one is configured
func (a *Application) observe(outcome string, start time.Time) {
	a.Metrics.ObserveRun(outcome, time.Since(start))
	if a.Config.MetricsFile == "" {
		return
	}
	if err := a.Metrics.WriteFile(a.Config.MetricsFile); err != nil {
		a.Logger.Warn().Err(err).Str("file", a.Config.MetricsFile).Msg("Failed to write metrics")
	}
}

// Replay extracts listings from a saved page, such as a debug dump, without opening a browser.
// The file name stem stands in for the query.
func (a *Application) Replay(ctx context.Context, file string, rep engine.Reporter) (*Result, error) {
	markup, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	page, err := static.FromHTML(string(markup), a.Config.BaseURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	start := time.Now()
	query := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	ds, err := a.pipeline(rep).Extract(ctx, page, query)
	if err != nil {
		a.observe(metrics.OutcomeError, start)
		return nil, err
	}
	return a.finish(ds, start)
}

func (a *Application) export(ds *models.Dataset) (*Result, error) {
	res := &Result{Dataset: ds}
	if ds.Len() == 0 {
		a.Logger.Debug().Str("query", ds.Query()).Msg("No records, nothing to export")
		return res, nil
	}
	path, err := a.Exporter.Export(ds)
	if err != nil {
		return res, fmt.Errorf("failed to export results: %w", err)
	}
	res.Path = path
	return res, nil
}

// Close releases idle connections held by the HTTP client
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}
	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("Application shutdown complete")
	return nil
}
