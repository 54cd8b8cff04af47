// internal/engine/pipeline.go
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/law-makers/marketscan/internal/results"
	"github.com/law-makers/marketscan/internal/runctx"
	urlutil "github.com/law-makers/marketscan/internal/utils/url"
	"github.com/law-makers/marketscan/pkg/models"
	"github.com/rs/zerolog/log"
)

// MaxListings bounds how many listing items a run visits
const MaxListings = 10

// Diagnostics persists the page markup when no listing strategy matched
type Diagnostics interface {
	Dump(ctx context.Context, markup string) (string, error)
}

// Chains groups the selector chains for every role the pipeline looks up
type Chains struct {
	SearchInput Chain
	Listings    Chain
	Name        Chain
	Price       Chain
	Link        Chain
}

// DefaultChains returns the built-in chains for the market search page
func DefaultChains() Chains {
	return Chains{
		SearchInput: DefaultSearchInput(),
		Listings:    DefaultListings(),
		Name:        DefaultName(),
		Price:       DefaultPrice(),
		Link:        DefaultLink(),
	}
}

// Options configures a Pipeline
type Options struct {
	BaseURL string
	Chains  Chains

	Sync         SyncMode
	NavigateWait time.Duration
	SubmitWait   time.Duration
	TypeWait     time.Duration // pause between typing and Enter, delay mode only
	PollInterval time.Duration
	Linger       time.Duration

	Diagnostics Diagnostics
	Reporter    Reporter
	Now         func() time.Time
}

// Pipeline runs one search and extracts listings from the results page
type Pipeline struct {
	launcher Launcher
	opts     Options
}

// New creates a Pipeline. Zero-valued options fall back to the defaults.
func New(l Launcher, opts Options) *Pipeline {
	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sync == "" {
		opts.Sync = SyncReady
	}
	if len(opts.Chains.Listings.Strategies) == 0 {
		opts.Chains = DefaultChains()
	}
	return &Pipeline{launcher: l, opts: opts}
}

// Run launches a session, submits query on the search page and extracts the listings.
// The session is closed before Run returns on every path.
func (p *Pipeline) Run(ctx context.Context, query string) (*models.Dataset, error) {
	ctx = runctx.WithRun(ctx, query)
	run := runctx.FromContext(ctx)
	logger := log.With().Str("run_id", run.ID).Str("engine", p.launcher.Name()).Logger()

	logger.Debug().Str("query", query).Msg("Starting run")

	page, err := p.launcher.Launch(ctx)
	if err != nil {
		return nil, runctx.Wrap(ctx, NewEngineError(ErrCodeBrowser, "failed to launch session", err))
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close session")
		}
	}()

	p.opts.Reporter.Stage("Opening " + p.opts.BaseURL)
	if err := page.Navigate(ctx, p.opts.BaseURL); err != nil {
		return nil, runctx.Wrap(ctx, NewEngineError(ErrCodeNavigation, "failed to open search page", err).
			WithDetail("url", p.opts.BaseURL))
	}
	if err := p.settle(ctx, page, p.opts.NavigateWait, p.opts.Chains.SearchInput); err != nil {
		return nil, runctx.Wrap(ctx, err)
	}

	p.opts.Reporter.Stage("Looking for the search field")
	match, ok, err := p.opts.Chains.SearchInput.First(ctx, page)
	if err != nil {
		return nil, runctx.Wrap(ctx, NewEngineError(ErrCodeExtract, "search input lookup failed", err))
	}
	if !ok {
		return nil, runctx.Wrap(ctx, NotFoundError(RoleSearchInput, p.opts.Chains.SearchInput.Selectors()))
	}
	input := match.Elements[0]

	p.opts.Reporter.Stage(fmt.Sprintf("Searching for %q", query))
	if err := input.Fill(ctx, query); err != nil {
		return nil, runctx.Wrap(ctx, NewEngineError(ErrCodeBrowser, "failed to type query", err))
	}
	if p.opts.Sync == SyncDelay && p.opts.TypeWait > 0 {
		if err := page.Wait(ctx, p.opts.TypeWait); err != nil {
			return nil, runctx.Wrap(ctx, NewEngineError(ErrCodeTimeout, "wait interrupted", err))
		}
	}

	before := generation(page)
	if err := input.Press(ctx, KeyEnter); err != nil {
		return nil, runctx.Wrap(ctx, NewEngineError(ErrCodeNavigation, "failed to submit query", err))
	}

	p.opts.Reporter.Stage("Waiting for results")
	if err := p.settleSubmit(ctx, page, before); err != nil {
		return nil, runctx.Wrap(ctx, err)
	}

	ds, err := p.Extract(ctx, page, query)
	if err != nil {
		return nil, runctx.Wrap(ctx, err)
	}

	if p.opts.Linger > 0 {
		logger.Debug().Dur("linger", p.opts.Linger).Msg("Holding session open")
		if err := page.Wait(ctx, p.opts.Linger); err != nil {
			logger.Debug().Err(err).Msg("Linger interrupted")
		}
	}

	logger.Info().
		Int("records", ds.Len()).
		Dur("elapsed", time.Since(run.StartTime)).
		Msg("Run completed")

	return ds, nil
}

// settle inserts the wait that follows navigation or submission
func (p *Pipeline) settle(ctx context.Context, page Page, budget time.Duration, expect Chain) error {
	if budget <= 0 {
		return nil
	}
	if p.opts.Sync == SyncDelay {
		if err := page.Wait(ctx, budget); err != nil {
			return NewEngineError(ErrCodeTimeout, "wait interrupted", err)
		}
		return nil
	}

	ready, err := WaitForAny(ctx, page, budget, p.opts.PollInterval, expect)
	if err != nil {
		return NewEngineError(ErrCodeTimeout, "wait interrupted", err)
	}
	if !ready {
		log.Debug().Str("role", expect.Role).Dur("budget", budget).Msg("Readiness wait timed out")
	}
	return nil
}

// settleSubmit waits for the results page after Enter. In ready mode a versioned page must
// first replace the search document, so listings still showing on the search page don't count.
func (p *Pipeline) settleSubmit(ctx context.Context, page Page, before int64) error {
	budget := p.opts.SubmitWait
	if budget <= 0 || p.opts.Sync == SyncDelay {
		return p.settle(ctx, page, budget, p.opts.Chains.Listings)
	}

	if v, ok := page.(Versioned); ok {
		replaced, left, err := WaitForDocument(ctx, page, v, before, budget, p.opts.PollInterval)
		if err != nil {
			return NewEngineError(ErrCodeTimeout, "wait interrupted", err)
		}
		if !replaced {
			log.Debug().Dur("budget", budget).Msg("Submission did not replace the document")
			return nil
		}
		budget = left
	}
	return p.settle(ctx, page, budget, p.opts.Chains.Listings)
}

func generation(page Page) int64 {
	if v, ok := page.(Versioned); ok {
		return v.Generation()
	}
	return 0
}

// Extract pulls up to MaxListings records from the current page.
// A page with no listings yields an empty dataset and a diagnostic dump, not an error.
func (p *Pipeline) Extract(ctx context.Context, page Page, query string) (*models.Dataset, error) {
	sink := results.NewSink()
	logger := log.With().Str("run_id", runctx.FromContext(ctx).ID).Logger()

	p.opts.Reporter.Stage("Parsing listings")
	match, ok, err := p.opts.Chains.Listings.First(ctx, page)
	if err != nil {
		logger.Warn().Err(err).Msg("Listing lookup failed")
		ok = false
	}
	if !ok {
		path := p.dumpDiagnostics(ctx, page)
		p.opts.Reporter.ListingsMissing(path)
		return sink.Finalize(query, p.opts.Now())
	}

	items := match.Elements
	if len(items) > MaxListings {
		items = items[:MaxListings]
	}
	p.opts.Reporter.ListingsFound(match.Strategy, len(match.Elements), len(items))

	for i, item := range items {
		rec, err := p.extractItem(ctx, item)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("Skipping listing")
			p.opts.Reporter.ItemFailed(i, err)
			continue
		}
		if err := sink.Append(rec); err != nil {
			return nil, err
		}
		p.opts.Reporter.ItemDone(i, rec)
	}

	return sink.Finalize(query, p.opts.Now())
}

// extractItem reads every field of one listing. Any error or panic skips the whole item.
func (p *Pipeline) extractItem(ctx context.Context, item Element) (rec models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewEngineError(ErrCodeExtract, "listing extraction panicked", fmt.Errorf("%v", r))
		}
	}()

	name, err := p.field(ctx, item, p.opts.Chains.Name, models.NameNotFound)
	if err != nil {
		return models.Record{}, err
	}
	price, err := p.field(ctx, item, p.opts.Chains.Price, models.PriceNotFound)
	if err != nil {
		return models.Record{}, err
	}
	link, err := p.link(ctx, item)
	if err != nil {
		return models.Record{}, err
	}

	return models.Record{
		Name:       name,
		Price:      price,
		URL:        link,
		CapturedAt: p.opts.Now().Truncate(time.Second),
	}, nil
}

// field returns the trimmed text of the chain's first match, or fallback on a miss
func (p *Pipeline) field(ctx context.Context, item Element, chain Chain, fallback string) (string, error) {
	m, ok, err := chain.First(ctx, item)
	if err != nil {
		return "", err
	}
	if !ok {
		return fallback, nil
	}
	text, err := m.Elements[0].Text(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: read text: %w", chain.Role, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback, nil
	}
	return text, nil
}

// link returns the absolute href of the first anchor, or "" when there is none
func (p *Pipeline) link(ctx context.Context, item Element) (string, error) {
	m, ok, err := p.opts.Chains.Link.First(ctx, item)
	if err != nil || !ok {
		return "", err
	}
	href, present, err := m.Elements[0].Attr(ctx, "href")
	if err != nil {
		return "", fmt.Errorf("%s: read href: %w", RoleLink, err)
	}
	if !present || strings.TrimSpace(href) == "" {
		return "", nil
	}
	return urlutil.ResolveURL(urlutil.Origin(p.opts.BaseURL), href), nil
}

func (p *Pipeline) dumpDiagnostics(ctx context.Context, page Page) string {
	if p.opts.Diagnostics == nil {
		return ""
	}
	markup, err := page.Content(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read page markup for diagnostics")
		return ""
	}
	path, err := p.opts.Diagnostics.Dump(ctx, markup)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to write diagnostic markup")
		return ""
	}
	log.Debug().Str("file", path).Int("bytes", len(markup)).Msg("Diagnostic markup saved")
	return path
}
