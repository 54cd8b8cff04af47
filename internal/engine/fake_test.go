package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/law-makers/marketscan/pkg/models"
)

// fakeNode is an in-memory element; children maps a selector to its matches
type fakeNode struct {
	log      *callLog
	text     string
	attrs    map[string]string
	children map[string][]*fakeNode

	locateErr error
	textErr   error
	panics    bool

	filled  string
	pressed []string
	onPress func(key string)
}

type callLog struct {
	mu       sync.Mutex
	locates  []string
	textRead int
}

func (l *callLog) locate(sel string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locates = append(l.locates, sel)
}

func (l *callLog) count(sel string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, s := range l.locates {
		if s == sel {
			n++
		}
	}
	return n
}

func (n *fakeNode) Locate(ctx context.Context, selector string) ([]Element, error) {
	if n.log != nil {
		n.log.locate(selector)
	}
	if n.panics {
		panic("detached node")
	}
	if n.locateErr != nil {
		return nil, n.locateErr
	}
	return asElements(n.children[selector]), nil
}

func (n *fakeNode) Text(ctx context.Context) (string, error) {
	if n.log != nil {
		n.log.mu.Lock()
		n.log.textRead++
		n.log.mu.Unlock()
	}
	if n.textErr != nil {
		return "", n.textErr
	}
	return n.text, nil
}

func (n *fakeNode) Attr(ctx context.Context, name string) (string, bool, error) {
	v, ok := n.attrs[name]
	return v, ok, nil
}

func (n *fakeNode) Fill(ctx context.Context, text string) error {
	n.filled = text
	return nil
}

func (n *fakeNode) Press(ctx context.Context, key string) error {
	n.pressed = append(n.pressed, key)
	if n.onPress != nil {
		n.onPress(key)
	}
	return nil
}

func asElements(nodes []*fakeNode) []Element {
	out := make([]Element, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

// fakePage serves the search page until the input receives Enter, then the results page.
// With async set, Enter only starts the navigation and the results arrive on the next Wait.
type fakePage struct {
	log       *callLog
	search    map[string][]*fakeNode
	results   map[string][]*fakeNode
	submitted bool
	async     bool
	pending   bool
	sleep     bool

	navErr    error
	navigated []string
	waits     []time.Duration
	closed    int
	content   string
}

func (p *fakePage) Locate(ctx context.Context, selector string) ([]Element, error) {
	p.log.locate(selector)
	if p.submitted {
		return asElements(p.results[selector]), nil
	}
	return asElements(p.search[selector]), nil
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) Wait(ctx context.Context, d time.Duration) error {
	p.waits = append(p.waits, d)
	if p.sleep {
		if err := Sleep(ctx, d); err != nil {
			return err
		}
	}
	if p.pending {
		p.pending = false
		p.submitted = true
	}
	return nil
}

func (p *fakePage) Generation() int64 {
	if p.submitted {
		return 1
	}
	return 0
}

func (p *fakePage) Content(ctx context.Context) (string, error) {
	return p.content, nil
}

func (p *fakePage) Close() error {
	p.closed++
	return nil
}

type fakeLauncher struct {
	page      *fakePage
	launchErr error
	launched  int
}

func (l *fakeLauncher) Launch(ctx context.Context) (Page, error) {
	l.launched++
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	return l.page, nil
}

func (l *fakeLauncher) Name() string { return "fake" }

type fakeDiagnostics struct {
	dumps []string
}

func (d *fakeDiagnostics) Dump(ctx context.Context, markup string) (string, error) {
	d.dumps = append(d.dumps, markup)
	return "debug.html", nil
}

type recordingReporter struct {
	NopReporter
	done     []int
	failed   []int
	strategy string
	missing  bool
}

func (r *recordingReporter) ListingsFound(s Strategy, total, processing int) {
	r.strategy = s.Selector
}

func (r *recordingReporter) ListingsMissing(string) { r.missing = true }

func (r *recordingReporter) ItemDone(i int, _ models.Record) { r.done = append(r.done, i) }

func (r *recordingReporter) ItemFailed(i int, _ error) { r.failed = append(r.failed, i) }

var errDetached = errors.New("node detached")

// newSearchPage wires a search input whose Enter switches the page to results
func newSearchPage(results map[string][]*fakeNode) *fakePage {
	log := &callLog{}
	p := &fakePage{log: log, results: results}
	input := &fakeNode{log: log}
	input.onPress = func(key string) {
		switch {
		case key != KeyEnter:
		case p.async:
			p.pending = true
		default:
			p.submitted = true
		}
	}
	p.search = map[string][]*fakeNode{`input[name='text']`: {input}}
	for _, nodes := range results {
		for _, n := range nodes {
			attachLog(n, log)
		}
	}
	return p
}

func attachLog(n *fakeNode, log *callLog) {
	n.log = log
	for _, kids := range n.children {
		for _, k := range kids {
			attachLog(k, log)
		}
	}
}

// listing builds a listing node with a title, a price and an anchor
func listing(name, price, href string) *fakeNode {
	return &fakeNode{
		children: map[string][]*fakeNode{
			`[class*="title"]`: {{text: name}},
			`[class*="price"]`: {{text: price}},
			`a`:                {{text: name, attrs: map[string]string{"href": href}}},
		},
	}
}
