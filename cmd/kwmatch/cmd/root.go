package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/corey/kwmatch/internal/config"
	"github.com/spf13/cobra"
)

var (
	rootDir   string
	verbose   bool
	colorMode string
)

var rootCmd = &cobra.Command{
	Use:           "kwmatch",
	Short:         "kwmatch: boolean keyword pattern matcher",
	Long:          "Match many keyword patterns (a&b~c) against text in a single Aho-Corasick pass.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// projectRoot returns --root, or the cwd by default.
func projectRoot() (string, error) {
	if rootDir != "" {
		return rootDir, nil
	}
	return os.Getwd()
}

// loadConfig loads configuration for the project root.
func loadConfig() (*config.Config, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

// newLogger builds the CLI logger: text on stderr at the configured level,
// or debug with --verbose.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		if l, err := cfg.SlogLevel(); err == nil {
			level = l
		}
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootDir, "root", "", "Project root (default: current directory)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
	pf.StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(reloadCmd)
}
