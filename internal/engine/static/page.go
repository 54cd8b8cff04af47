// internal/engine/static/page.go
package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/marketscan/internal/engine"
	"github.com/law-makers/marketscan/internal/retry"
	"github.com/rs/zerolog/log"
)

// ErrOffline is returned when a page built from saved markup is asked to load something
var ErrOffline = errors.New("page has no HTTP client")

// Launcher opens goquery-backed pages that load documents over plain HTTP.
// It cannot run page scripts; it suits server-rendered search pages and offline replay.
type Launcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	retry     retry.Config
}

// NewLauncher creates a Launcher with dependency injection
func NewLauncher(client *http.Client, ua string, rc retry.Config) *Launcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Launcher{client: client, userAgent: ua, retry: rc}
}

// WithHeaders sets extra headers sent with every request
func (l *Launcher) WithHeaders(h map[string]string) *Launcher {
	l.headers = h
	return l
}

// Name returns the name of this engine
func (l *Launcher) Name() string {
	return "static"
}

// Launch returns a blank page
func (l *Launcher) Launch(ctx context.Context) (engine.Page, error) {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	return &Page{
		client:    l.client,
		userAgent: l.userAgent,
		headers:   l.headers,
		retry:     l.retry,
		doc:       doc,
		url:       "about:blank",
	}, nil
}

// Page is a parsed HTML document. Navigation and form submission replace the document;
// elements taken from a replaced document report engine.ErrStale.
type Page struct {
	mu        sync.Mutex
	client    *http.Client
	userAgent string
	headers   map[string]string
	retry     retry.Config

	doc    *goquery.Document
	url    string
	gen    int
	closed bool
}

// FromHTML wraps saved markup in an offline page. pageURL is used to resolve relative links.
func FromHTML(markup, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{doc: doc, url: pageURL}, nil
}

// URL returns the address of the current document
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Generation counts the documents loaded so far
func (p *Page) Generation() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(p.gen)
}

// Locate matches selector against the whole document
func (p *Page) Locate(ctx context.Context, selector string) ([]engine.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, engine.ErrClosed
	}
	return wrap(p, p.gen, p.doc.Find(selector)), nil
}

// Navigate fetches rawURL and replaces the document
func (p *Page) Navigate(ctx context.Context, rawURL string) error {
	return p.load(ctx, http.MethodGet, rawURL, nil)
}

// Wait suspends for d
func (p *Page) Wait(ctx context.Context, d time.Duration) error {
	return engine.Sleep(ctx, d)
}

// Content returns the current document markup
func (p *Page) Content(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", engine.ErrClosed
	}
	return p.doc.Html()
}

// Close marks the page closed. Further calls are no-ops.
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// load requests a document and swaps it in. form is sent as the query (GET) or body (POST).
func (p *Page) load(ctx context.Context, method, rawURL string, form url.Values) error {
	if p.client == nil {
		return ErrOffline
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return engine.ErrClosed
	}

	start := time.Now()
	var doc *goquery.Document
	var finalURL string

	err := retry.Do(ctx, p.retry, func() error {
		req, err := p.newRequest(ctx, method, rawURL, form)
		if err != nil {
			return err
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			return &retry.StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to parse HTML: %w", err)
		}
		finalURL = req.URL.String()
		if resp.Request != nil {
			finalURL = resp.Request.URL.String()
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.doc = doc
	p.url = finalURL
	p.gen++
	p.mu.Unlock()

	log.Debug().
		Str("method", method).
		Str("url", finalURL).
		Dur("elapsed", time.Since(start)).
		Msg("Document loaded")
	return nil
}

func (p *Page) newRequest(ctx context.Context, method, rawURL string, form url.Values) (*http.Request, error) {
	var body io.Reader
	target := rawURL

	if method == http.MethodPost {
		body = strings.NewReader(form.Encode())
	} else if form != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid form action: %w", err)
		}
		u.RawQuery = form.Encode()
		target = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}
