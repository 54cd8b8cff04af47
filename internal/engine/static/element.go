package static

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/marketscan/internal/engine"
	urlutil "github.com/law-makers/marketscan/internal/utils/url"
)

// ErrNoForm is returned when Enter is pressed on an element outside any <form>
var ErrNoForm = errors.New("element is not inside a form")

// Element is a single node of a Page document
type Element struct {
	page *Page
	gen  int
	sel  *goquery.Selection
}

func wrap(p *Page, gen int, sel *goquery.Selection) []engine.Element {
	out := make([]engine.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{page: p, gen: gen, sel: s})
	})
	return out
}

// check fails when the page is closed or the element's document was replaced
func (e *Element) check() error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.page.closed {
		return engine.ErrClosed
	}
	if e.page.gen != e.gen {
		return engine.ErrStale
	}
	return nil
}

// Locate matches selector against the element's descendants
func (e *Element) Locate(ctx context.Context, selector string) ([]engine.Element, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return wrap(e.page, e.gen, e.sel.Find(selector)), nil
}

// Text returns the concatenated text of the element and its descendants
func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	return e.sel.Text(), nil
}

// Attr returns the attribute value and whether it is present
func (e *Element) Attr(ctx context.Context, name string) (string, bool, error) {
	if err := e.check(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// Fill sets the element's value
func (e *Element) Fill(ctx context.Context, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	if goquery.NodeName(e.sel) == "textarea" {
		e.sel.SetText(text)
		return nil
	}
	e.sel.SetAttr("value", text)
	return nil
}

// Press submits the enclosing form on Enter. Other keys have no effect on a static document.
func (e *Element) Press(ctx context.Context, key string) error {
	if err := e.check(); err != nil {
		return err
	}
	if key != engine.KeyEnter {
		return nil
	}

	form := e.sel.Closest("form")
	if form.Length() == 0 {
		return ErrNoForm
	}

	method := strings.ToUpper(strings.TrimSpace(form.AttrOr("method", http.MethodGet)))
	if method != http.MethodPost {
		method = http.MethodGet
	}
	action := urlutil.ResolveURL(e.page.URL(), form.AttrOr("action", ""))
	if action == "" {
		action = e.page.URL()
	}

	return e.page.load(ctx, method, action, formValues(form))
}

// formValues collects the successful controls of a form
func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}

	form.Find("input[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		switch strings.ToLower(s.AttrOr("type", "text")) {
		case "submit", "button", "image", "reset", "file":
			return
		case "checkbox", "radio":
			if _, checked := s.Attr("checked"); !checked {
				return
			}
			values.Add(name, s.AttrOr("value", "on"))
		default:
			values.Add(name, s.AttrOr("value", ""))
		}
	})

	form.Find("textarea[name]").Each(func(_ int, s *goquery.Selection) {
		values.Add(s.AttrOr("name", ""), s.Text())
	})

	form.Find("select[name]").Each(func(_ int, s *goquery.Selection) {
		opt := s.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = s.Find("option").First()
		}
		if opt.Length() == 0 {
			return
		}
		values.Add(s.AttrOr("name", ""), opt.AttrOr("value", strings.TrimSpace(opt.Text())))
	})

	return values
}
