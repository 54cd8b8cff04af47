// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/marketscan/internal/app"
	"github.com/law-makers/marketscan/internal/config"
	"github.com/law-makers/marketscan/internal/ui"
)

// rootCmd represents the base command. With a query (or none, to be prompted) it runs a search.
var rootCmd = &cobra.Command{
	Use:   "marketscan [query]",
	Short: "Search a marketplace and save the first page of listings",
	Long: `Marketscan opens the marketplace search page in a browser, submits a query and
extracts up to 10 listings (name, price, link) from the results.

Listings are found through ordered selector fallbacks, so a layout change on one element
degrades a single field instead of the whole run. Results go to a timestamped CSV or JSON
file; when no listings are found the page markup is saved for debugging.`,
	Example: `  # Search, prompting for the query
  marketscan

  # Search for a query directly
  marketscan "brake pads"

  # Show the browser window and keep it open for 10 seconds
  marketscan "brake pads" --headed --linger 10s

  # Re-run extraction on a saved page
  marketscan replay debug.html`,
	Version:       "0.1.0",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSearch,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			rootCmd.PrintErrln(ui.Error("Error: " + err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	// Initialize the application before running commands (skipped for -h/--version)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		log.Debug().Str("engine", cfg.Engine).Str("base_url", cfg.BaseURL).Msg("Configuration loaded")
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return
		}
		_ = a.Close(context.Background())
		SetApp(cmd, nil)
	}

	config.RegisterFlags(rootCmd)
	rootCmd.PersistentFlags().Bool("progress", false, "Show a progress bar while listings are parsed")

	rootCmd.Flags().BoolP("help", "h", false, "Help for Marketscan")
	rootCmd.Flags().Bool("version", false, "Version for Marketscan")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}
