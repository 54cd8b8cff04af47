package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all log output")
	pf.Bool("json", false, "Emit logs as JSON")
	pf.String("config", "", "Path to a YAML configuration file (optional)")

	pf.String("base-url", "", "Search page origin (default "+DefaultBaseURL+")")
	pf.StringP("engine", "e", "", "Page engine: browser or static (default "+DefaultEngine+")")
	pf.String("sync", "", "Wait strategy after navigation: ready or delay (default "+DefaultSync+")")
	pf.String("timeout", "", "Per-operation timeout (default 30s)")
	pf.String("linger", "", "Keep the browser open this long after extraction")
	pf.String("user-agent", "", "Custom user agent string")
	pf.StringArrayP("header", "H", nil, "Extra request header (e.g., -H \"Accept-Language: ru-RU\")")
	pf.String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	pf.String("chrome-path", "", "Path to the Chrome/Chromium executable")
	pf.Bool("headed", false, "Show the browser window")

	pf.StringP("output-dir", "o", "", "Directory for result files (default current directory)")
	pf.StringP("format", "f", "", "Result file format: csv or json (default "+DefaultFormat+")")
	pf.String("debug-file", "", "Where to save page markup when no listings are found (default "+DefaultDebugFile+")")
	pf.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	pf.Bool("debug-markdown", false, "Also save a markdown rendition of the debug markup")
}
