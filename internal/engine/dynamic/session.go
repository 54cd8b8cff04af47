// internal/engine/dynamic/session.go
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/marketscan/internal/engine"
	"github.com/rs/zerolog/log"
)

// Launcher starts one Chrome instance per run
type Launcher struct {
	opts Options
}

// NewLauncher creates a Launcher with dependency injection
func NewLauncher(opts Options) *Launcher {
	return &Launcher{opts: opts.withDefaults()}
}

// Name returns the name of this engine
func (l *Launcher) Name() string {
	return "browser"
}

// Launch starts the browser, opens a tab and applies the viewport
func (l *Launcher) Launch(ctx context.Context) (engine.Page, error) {
	start := time.Now()
	chromePath := FindChrome(l.opts.ChromePath)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(l.opts, chromePath)...)
	browserCtx, tabCancel := chromedp.NewContext(allocCtx)

	p := &Page{
		browserCtx:  browserCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		timeout:     l.opts.Timeout,
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *network.EventResponseReceived:
			if ev.Type == network.ResourceTypeDocument {
				p.status.Store(ev.Response.Status)
			}
		case *page.EventFrameNavigated:
			if ev.Frame != nil && ev.Frame.ParentID == "" {
				p.gen.Add(1)
			}
		}
	})

	if err := p.start(ctx); err != nil {
		p.Close()
		return nil, launchError("failed to start browser", chromePath, err)
	}

	actions := []chromedp.Action{
		network.Enable(),
		emulation.SetDeviceMetricsOverride(int64(l.opts.WindowWidth), int64(l.opts.WindowHeight), 1, false),
	}
	if len(l.opts.Headers) > 0 {
		h := make(network.Headers, len(l.opts.Headers))
		for k, v := range l.opts.Headers {
			h[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(h))
	}
	if err := p.run(ctx, actions...); err != nil {
		p.Close()
		return nil, launchError("failed to prepare tab", chromePath, err)
	}

	log.Debug().
		Str("chrome", chromePath).
		Str("mode", l.opts.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Browser session started")
	return p, nil
}

func launchError(msg, chromePath string, err error) *engine.EngineError {
	return engine.NewEngineError(engine.ErrCodeBrowser, msg, err).WithDetail("chrome", chromePath)
}

// Page is a single tab of the launched browser
type Page struct {
	browserCtx  context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration

	// gen counts main-frame navigations; nodes from an earlier generation are stale
	gen    atomic.Int64
	status atomic.Int64

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// start allocates the browser process and the tab. The first Run on a chromedp context owns the
// process lifetime, so it runs on browserCtx itself and the bound is enforced from outside.
func (p *Page) start(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(p.browserCtx) }()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("browser did not start within %s", p.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes actions in the tab, bounded by the operation timeout and by ctx
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if p.closed.Load() {
		return engine.ErrClosed
	}
	opCtx, cancel := context.WithTimeout(p.browserCtx, p.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(opCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return engine.NewEngineError(engine.ErrCodeTimeout, "browser operation timed out", err).WithRetry()
	}
	return err
}

// Navigate loads rawURL and waits for the load event
func (p *Page) Navigate(ctx context.Context, rawURL string) error {
	start := time.Now()
	p.status.Store(0)
	if err := p.run(ctx, chromedp.Navigate(rawURL)); err != nil {
		return err
	}
	p.gen.Add(1)

	log.Debug().
		Str("url", rawURL).
		Int64("status", p.status.Load()).
		Dur("elapsed", time.Since(start)).
		Msg("Page loaded")
	return nil
}

// Generation reports how many documents the main frame has committed
func (p *Page) Generation() int64 {
	return p.gen.Load()
}

// Locate queries the whole document. It returns at once when nothing matches.
func (p *Page) Locate(ctx context.Context, selector string) ([]engine.Element, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return p.wrap(nodes), nil
}

// Wait suspends for d
func (p *Page) Wait(ctx context.Context, d time.Duration) error {
	return engine.Sleep(ctx, d)
}

// Content returns the serialized document
func (p *Page) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts the tab and the browser process. Only the first call has an effect.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.closeErr = chromedp.Cancel(p.browserCtx)
		p.tabCancel()
		p.allocCancel()
		log.Debug().Msg("Browser session closed")
	})
	return p.closeErr
}

func (p *Page) wrap(nodes []*cdp.Node) []engine.Element {
	gen := p.gen.Load()
	out := make([]engine.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{page: p, node: n, gen: gen})
	}
	return out
}
