package output

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// keptAttrs are the attributes that survive CleanHTML, per element. "*" applies to every element.
var keptAttrs = map[string][]string{
	"*":   {"class", "id", "data-autotest-id"},
	"a":   {"href", "title"},
	"img": {"src", "alt"},
}

// CleanHTML strips scripts, styles and embedded media, and every attribute except the ones
// selectors are usually written against
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, canvas").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var attrs []html.Attribute
		for _, attr := range node.Attr {
			if keepAttr(node.Data, attr.Key) {
				attrs = append(attrs, attr)
			}
		}
		node.Attr = attrs
	})

	htmlStr, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlStr), nil
}

func keepAttr(tag, key string) bool {
	for _, k := range keptAttrs["*"] {
		if k == key {
			return true
		}
	}
	for _, k := range keptAttrs[tag] {
		if k == key {
			return true
		}
	}
	return false
}
