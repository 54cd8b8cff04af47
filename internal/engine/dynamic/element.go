package dynamic

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/law-makers/marketscan/internal/engine"
)

// Element is a DOM node of the page it was located on
type Element struct {
	page *Page
	node *cdp.Node
	gen  int64
}

func (e *Element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *Element) check() error {
	if e.page.closed.Load() {
		return engine.ErrClosed
	}
	if e.page.gen.Load() != e.gen {
		return engine.ErrStale
	}
	return nil
}

// Locate queries the element's descendants
func (e *Element) Locate(ctx context.Context, selector string) ([]engine.Element, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	err := e.page.run(ctx, chromedp.Nodes(selector, &nodes,
		chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	return e.page.wrap(nodes), nil
}

// Text returns the node's textContent
func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	var text string
	if err := e.page.run(ctx, chromedp.TextContent(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return text, nil
}

// Attr returns the attribute value and whether it is present
func (e *Element) Attr(ctx context.Context, name string) (string, bool, error) {
	if err := e.check(); err != nil {
		return "", false, err
	}
	var value string
	var ok bool
	if err := e.page.run(ctx, chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

// Fill focuses the element, clears it and types text
func (e *Element) Fill(ctx context.Context, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.page.run(ctx,
		chromedp.Focus(e.ids(), chromedp.ByNodeID),
		chromedp.SetValue(e.ids(), "", chromedp.ByNodeID),
		chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID),
	)
}

// Press sends a single key to the element. engine.KeyEnter submits; the navigation it
// starts completes asynchronously and is tracked by Page.Generation.
func (e *Element) Press(ctx context.Context, key string) error {
	if err := e.check(); err != nil {
		return err
	}
	if key == engine.KeyEnter {
		key = kb.Enter
	}
	return e.page.run(ctx, chromedp.SendKeys(e.ids(), key, chromedp.ByNodeID))
}
