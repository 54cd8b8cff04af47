// internal/cli/search.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/marketscan/internal/app"
	"github.com/law-makers/marketscan/internal/ui"
)

// searchCmd runs one search; the root command does the same
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the marketplace and save the listings",
	Long: `Opens the search page, submits the query and extracts up to 10 listings.
Without arguments the query is read from standard input.`,
	Example: `  # Prompt for the query
  marketscan search

  # Use the static engine and save JSON
  marketscan search "brake pads" --engine static --format json`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		var err error
		query, err = promptQuery(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
	}
	if query == "" {
		fmt.Fprintln(out, ui.Info("No query entered"))
		return nil
	}

	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	rep := newConsoleReporter(out, progressEnabled(cmd))
	res, err := a.Search(cmd.Context(), query, rep)
	rep.finish()
	if err != nil {
		return err
	}

	printSummary(out, res)
	return nil
}

func promptQuery(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, ui.Bold("Enter a search query (e.g. brake pads): "))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read query: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func progressEnabled(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("progress")
	return f != nil && f.Value.String() == "true"
}

// printSummary lists the records in order followed by the output path
func printSummary(out io.Writer, res *app.Result) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, ui.Bold("SEARCH RESULTS"))
	fmt.Fprintln(out, rule)

	for i, r := range res.Dataset.Records() {
		fmt.Fprintf(out, "%d. %s\n", i+1, r.Name)
		fmt.Fprintf(out, "   Price: %s\n", r.Price)
		fmt.Fprintf(out, "   Link: %s\n", r.URL)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Listings found: %d", res.Dataset.Len())))
	if res.Path != "" {
		fmt.Fprintf(out, "Results saved to %s\n", res.Path)
	}
}
