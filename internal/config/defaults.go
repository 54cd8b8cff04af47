package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel      = "error"
	DefaultJSONLog       = false
	DefaultBaseURL       = "https://market.yandex.ru"
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultEngine        = EngineBrowser
	DefaultSync          = "ready"
	DefaultTimeout       = 30 * time.Second
	DefaultNavigateWait  = 3 * time.Second
	DefaultSubmitWait    = 5 * time.Second
	DefaultTypeWait      = 1 * time.Second
	DefaultPollInterval  = 250 * time.Millisecond
	DefaultLinger        = 0
	DefaultHeadless      = true
	DefaultWindowWidth   = 1920
	DefaultWindowHeight  = 1080
	DefaultRetryAttempts = 3
	DefaultOutputDir     = "."
	DefaultFormat        = FormatCSV
	DefaultDebugFile     = "debug.html"
)

// Engines and output formats accepted by the config
const (
	EngineBrowser = "browser"
	EngineStatic  = "static"

	FormatCSV  = "csv"
	FormatJSON = "json"
)

// DefaultSelectors returns the built-in selector chains for the market search page
func DefaultSelectors() Selectors {
	return Selectors{
		SearchInput: []string{`input[name='text']`},
		Listings: []string{
			`[data-autotest-id="product-snippet"]`,
			`[class*="snippet"]`,
			`[class*="product"]`,
			`article`,
		},
		Name:  []string{`[class*="title"]`, `h3`, `a`},
		Price: []string{`[class*="price"]`, `[class*="Price"]`},
		Link:  []string{`a`},
	}
}
