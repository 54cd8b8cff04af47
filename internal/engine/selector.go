package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Roles a chain can be evaluated for
const (
	RoleSearchInput = "search input"
	RoleListings    = "listings"
	RoleName        = "name"
	RolePrice       = "price"
	RoleLink        = "link"
)

// Strategy is one candidate selector for a role
type Strategy struct {
	Name     string
	Selector string
}

// Chain is an ordered list of strategies, most specific first
type Chain struct {
	Role       string
	Strategies []Strategy
}

// Match is the winning strategy of a chain and the elements it matched
type Match struct {
	Strategy Strategy
	Index    int
	Elements []Element
}

// NewChain builds a chain from bare selectors, naming each strategy after its selector
func NewChain(role string, selectors ...string) Chain {
	c := Chain{Role: role}
	for _, sel := range selectors {
		c.Strategies = append(c.Strategies, Strategy{Name: sel, Selector: sel})
	}
	return c
}

// Selectors returns the chain's selectors in priority order
func (c Chain) Selectors() []string {
	out := make([]string, len(c.Strategies))
	for i, s := range c.Strategies {
		out[i] = s.Selector
	}
	return out
}

// First evaluates strategies in order and returns the first one matching at least one element.
// Strategies after the winner are never evaluated. ok is false when nothing matched.
func (c Chain) First(ctx context.Context, scope Locator) (Match, bool, error) {
	for i, s := range c.Strategies {
		elems, err := scope.Locate(ctx, s.Selector)
		if err != nil {
			return Match{}, false, fmt.Errorf("%s: locate %q: %w", c.Role, s.Selector, err)
		}
		if len(elems) > 0 {
			log.Debug().
				Str("role", c.Role).
				Str("strategy", s.Name).
				Int("index", i).
				Int("matches", len(elems)).
				Msg("Strategy matched")
			return Match{Strategy: s, Index: i, Elements: elems}, true, nil
		}
	}
	return Match{}, false, nil
}

// Default chains for the market search page
func DefaultSearchInput() Chain {
	return NewChain(RoleSearchInput, `input[name='text']`)
}

func DefaultListings() Chain {
	return NewChain(RoleListings,
		`[data-autotest-id="product-snippet"]`,
		`[class*="snippet"]`,
		`[class*="product"]`,
		`article`,
	)
}

func DefaultName() Chain {
	return NewChain(RoleName, `[class*="title"]`, `h3`, `a`)
}

func DefaultPrice() Chain {
	return NewChain(RolePrice, `[class*="price"]`, `[class*="Price"]`)
}

func DefaultLink() Chain {
	return NewChain(RoleLink, `a`)
}
