// internal/cli/replay.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.html>",
	Short: "Extract listings from a saved page",
	Long: `Runs listing extraction over a saved HTML file, such as the debug dump written when
a search finds nothing. No browser is started. Use it to try new selectors from a
config file against a page that used to fail.`,
	Example: `  # Retry the last failed page with custom selectors
  marketscan replay debug.html --config selectors.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	out := cmd.OutOrStdout()
	rep := newConsoleReporter(out, progressEnabled(cmd))
	res, err := a.Replay(cmd.Context(), args[0], rep)
	rep.finish()
	if err != nil {
		return err
	}

	printSummary(out, res)
	return nil
}
