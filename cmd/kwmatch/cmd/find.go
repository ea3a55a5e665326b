package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/corey/kwmatch"
	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/corey/kwmatch/internal/app"
	"github.com/corey/kwmatch/internal/config"
	"github.com/spf13/cobra"
)

var (
	findPatterns []string
	findFile     string
	findSet      string
	findNoLogic  bool
	findJSON     bool
	findExplain  bool
	findQuiet    bool
	findLines    bool
)

var findCmd = &cobra.Command{
	Use:   "find [flags] [text ...]",
	Short: "Match text against patterns in-process",
	Long: `Build the patterns and match text without a daemon.

Text is the arguments joined by spaces, or stdin when no arguments are given.
Patterns come from -e (repeatable), -f FILE and --set NAME, combined; with
none of those, the configured patterns_file or pattern_set is used.

A pattern "a&b~c&d" matches text containing a and b, unless it also
contains both c and d. Exit status: 0 matched, 1 no match, 2 error.`,
	Args: cobra.ArbitraryArgs,
	RunE: runFind,
}

func init() {
	f := findCmd.Flags()
	f.StringArrayVarP(&findPatterns, "pattern", "e", nil, "Pattern (repeatable)")
	f.StringVarP(&findFile, "file", "f", "", "Read patterns from FILE, one per line")
	f.StringVar(&findSet, "set", "", "Use a stored pattern set")
	f.BoolVar(&findNoLogic, "no-logic", false, "Treat patterns as literal strings (no & or ~)")
	f.BoolVar(&findJSON, "json", false, "JSON output")
	f.BoolVar(&findExplain, "explain", false, "Show the term occurrences behind each decision")
	f.BoolVarP(&findQuiet, "quiet", "q", false, "Quiet mode (exit code only)")
	f.BoolVar(&findLines, "lines", false, "Match each input line separately")
}

// outputOpts selects how results are rendered. Shared by find and query.
type outputOpts struct {
	json    bool
	explain bool
	quiet   bool
	color   palette
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg)

	patterns, err := findSource(cfg)
	if err != nil {
		return err
	}

	logic := cfg.Logic && !findNoLogic
	m := kwmatch.New(kwmatch.WithLogic(logic), kwmatch.WithWorkers(cfg.Workers))
	if err := m.Build(patterns); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	stats := m.Stats()
	log.Debug("patterns built", "patterns", stats.Patterns, "terms", stats.Terms, "logic", logic)

	opts := outputOpts{
		json:    findJSON,
		explain: findExplain,
		quiet:   findQuiet,
		color:   resolveColor(colorMode, cmd.OutOrStdout()),
	}
	matchFn := func(text string) (*socket.FindResult, error) {
		return matchLocal(m, text, findExplain)
	}
	return runMatch(cmd, args, findLines, opts, matchFn)
}

// findSource collects patterns from -e, -f and --set, falling back to the
// configured source when none were given.
func findSource(cfg *config.Config) ([]string, error) {
	patterns := append([]string(nil), findPatterns...)
	if findFile != "" {
		fromFile, err := app.LoadPatternFile(findFile)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, fromFile...)
	}
	if findSet != "" {
		fromSet, err := loadSet(cfg, findSet)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, fromSet...)
	}
	if len(findPatterns) > 0 || findFile != "" || findSet != "" {
		return patterns, nil
	}

	switch {
	case cfg.PatternsFile != "":
		return app.LoadPatternFile(cfg.PatternsFile)
	case cfg.PatternSet != "":
		return loadSet(cfg, cfg.PatternSet)
	default:
		return nil, fmt.Errorf("%w; or pass -e, -f or --set", app.ErrNoSource)
	}
}

// matchLocal runs one haystack through an in-process matcher.
func matchLocal(m *kwmatch.Matcher, text string, explain bool) (*socket.FindResult, error) {
	if explain {
		ex, err := m.Explain(text)
		if err != nil {
			return nil, err
		}
		return toFindResult(ex.Matched, ex.Observed, ex.Matches), nil
	}
	matched, err := m.Find(text)
	if err != nil {
		return nil, err
	}
	return toFindResult(matched, nil, nil), nil
}

// runMatch feeds the input text (whole, or line by line) to matchFn and
// renders each result. Returns errNoMatch when nothing matched.
func runMatch(cmd *cobra.Command, args []string, lines bool, opts outputOpts,
	matchFn func(string) (*socket.FindResult, error)) error {
	out := cmd.OutOrStdout()

	var in io.Reader
	if len(args) > 0 {
		in = strings.NewReader(strings.Join(args, " "))
	} else {
		in = cmd.InOrStdin()
	}

	if !lines {
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		res, err := matchFn(string(data))
		if err != nil {
			return err
		}
		if err := emit(out, res, 0, opts); err != nil {
			return err
		}
		if res.Count == 0 {
			return errNoMatch
		}
		return nil
	}

	matched := false
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), socket.MaxMessageBytes)
	for n := 1; scanner.Scan(); n++ {
		res, err := matchFn(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if res.Count == 0 {
			continue
		}
		matched = true
		if err := emit(out, res, n, opts); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if !matched {
		return errNoMatch
	}
	return nil
}

// emit renders one result. line > 0 marks --lines mode.
func emit(w io.Writer, res *socket.FindResult, line int, opts outputOpts) error {
	switch {
	case opts.quiet:
		return nil
	case opts.json:
		if line > 0 {
			return writeJSON(w, lineResult{Line: line, FindResult: res})
		}
		return writeJSON(w, res)
	case opts.explain:
		if line > 0 {
			fmt.Fprintf(w, "%s\n", opts.color.wrap(colorGreen, fmt.Sprintf("line %d", line)))
		}
		_, err := io.WriteString(w, formatExplain(res, opts.color))
		return err
	default:
		_, err := io.WriteString(w, formatMatched(res, line, opts.color))
		return err
	}
}
