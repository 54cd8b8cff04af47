package config

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	urlutil "github.com/law-makers/marketscan/internal/utils/url"
)

func validate(c *Config) error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.NavigateWait < 0 || c.SubmitWait < 0 || c.TypeWait < 0 || c.Linger < 0 {
		return fmt.Errorf("waits must not be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts must be > 0")
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}

	switch c.Engine {
	case EngineBrowser, EngineStatic:
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, EngineBrowser, EngineStatic)
	}
	switch c.Format {
	case FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", c.Format, FormatCSV, FormatJSON)
	}
	switch c.Sync {
	case "ready", "delay":
	default:
		return fmt.Errorf("unknown sync mode %q (want ready or delay)", c.Sync)
	}

	if err := urlutil.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("base url %q: %w", c.BaseURL, err)
	}
	if strings.TrimSpace(c.DebugFile) == "" {
		return fmt.Errorf("debug file must not be empty")
	}

	return validateSelectors(c.Selectors)
}

// validateSelectors checks that every chain is non-empty and every selector compiles
func validateSelectors(s Selectors) error {
	chains := []struct {
		role  string
		chain []string
	}{
		{"search_input", s.SearchInput},
		{"listings", s.Listings},
		{"name", s.Name},
		{"price", s.Price},
		{"link", s.Link},
	}
	for _, ch := range chains {
		if len(ch.chain) == 0 {
			return fmt.Errorf("selectors.%s must list at least one selector", ch.role)
		}
		for i, sel := range ch.chain {
			if _, err := cascadia.Compile(sel); err != nil {
				return fmt.Errorf("selectors.%s[%d] %q: %w", ch.role, i, sel, err)
			}
		}
	}
	return nil
}
