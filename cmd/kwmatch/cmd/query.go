package cmd

import (
	"fmt"

	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var (
	queryJSON    bool
	queryExplain bool
	queryQuiet   bool
	queryLines   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [flags] [text ...]",
	Short: "Match text against the running daemon's patterns",
	Long: `Send text to the daemon and print the patterns it satisfies.

Text is the arguments joined by spaces, or stdin when no arguments are given.
Exit status: 0 matched, 1 no match, 2 error.`,
	Args: cobra.ArbitraryArgs,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.BoolVar(&queryJSON, "json", false, "JSON output")
	f.BoolVar(&queryExplain, "explain", false, "Show the term occurrences behind each decision")
	f.BoolVarP(&queryQuiet, "quiet", "q", false, "Quiet mode (exit code only)")
	f.BoolVar(&queryLines, "lines", false, "Match each input line separately")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := socket.NewClient(cfg.SocketPath)
	if !client.Ping() {
		return fmt.Errorf("daemon is not running (start it with: kwmatch daemon start)")
	}

	opts := outputOpts{
		json:    queryJSON,
		explain: queryExplain,
		quiet:   queryQuiet,
		color:   resolveColor(colorMode, cmd.OutOrStdout()),
	}
	matchFn := func(text string) (*socket.FindResult, error) {
		return client.Find(text, queryExplain)
	}
	return runMatch(cmd, args, queryLines, opts, matchFn)
}
