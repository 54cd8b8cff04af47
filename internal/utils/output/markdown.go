package output

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/marketscan/internal/utils/url"
)

// ToMarkdown renders the debug dump as Markdown so a selector author can skim the
// listing text. Links are made absolute against baseURL and images collapse to their alt text.
func ToMarkdown(markup, baseURL string) (string, error) {
	cleaned, err := CleanHTML(markup)
	if err != nil {
		return "", err
	}

	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	conv.AddRules(
		md.Rule{
			Filter: []string{"a"},
			Replacement: func(content string, sel *goquery.Selection, _ *md.Options) *string {
				href, ok := sel.Attr("href")
				if !ok || strings.TrimSpace(href) == "" {
					return nil
				}
				out := fmt.Sprintf("[%s](%s)", strings.TrimSpace(content), urlutil.ResolveURL(baseURL, href))
				return &out
			},
		},
		md.Rule{
			Filter: []string{"img"},
			Replacement: func(_ string, sel *goquery.Selection, _ *md.Options) *string {
				alt := strings.TrimSpace(sel.AttrOr("alt", ""))
				return &alt
			},
		},
	)
	return conv.ConvertString(cleaned)
}
