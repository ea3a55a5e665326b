package cmd

import (
	"fmt"
	"io"

	"github.com/corey/kwmatch"
	"github.com/corey/kwmatch/internal/app"
	"github.com/spf13/cobra"
)

var (
	setAddFile    string
	setAddNoLogic bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Manage stored pattern sets",
}

var setAddCmd = &cobra.Command{
	Use:   "add <name> [pattern ...]",
	Short: "Store a pattern set (replaces an existing set of that name)",
	Long: `Store a named pattern set. Patterns come from the arguments, -f FILE,
or stdin (one per line) when neither is given. Patterns are validated
before saving.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSetAdd,
}

var setListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pattern sets",
	Args:  cobra.NoArgs,
	RunE:  runSetList,
}

var setShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored pattern set, one pattern per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetShow,
}

var setRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove"},
	Short:   "Delete a stored pattern set",
	Args:    cobra.ExactArgs(1),
	RunE:    runSetRm,
}

func init() {
	setAddCmd.Flags().StringVarP(&setAddFile, "file", "f", "", "Read patterns from FILE, one per line")
	setAddCmd.Flags().BoolVar(&setAddNoLogic, "no-logic", false, "Validate patterns as literal strings")

	setCmd.AddCommand(setAddCmd)
	setCmd.AddCommand(setListCmd)
	setCmd.AddCommand(setShowCmd)
	setCmd.AddCommand(setRmCmd)
}

func runSetAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name, patterns := args[0], args[1:]

	switch {
	case setAddFile != "":
		fromFile, err := app.LoadPatternFile(setAddFile)
		if err != nil {
			return err
		}
		patterns = append(patterns, fromFile...)
	case len(patterns) == 0:
		fromStdin, err := app.ReadPatterns(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		patterns = fromStdin
	}

	// Reject a set that could never build.
	logic := cfg.Logic && !setAddNoLogic
	if err := kwmatch.New(kwmatch.WithLogic(logic), kwmatch.WithWorkers(cfg.Workers)).Build(patterns); err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SavePatternSet(name, patterns); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ saved %s (%d patterns)\n", name, len(patterns))
	return nil
}

func runSetList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sets, err := store.ListPatternSets()
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), formatSets(sets, resolveColor(colorMode, cmd.OutOrStdout())))
	return err
}

func runSetShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	patterns, err := loadSet(cfg, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range patterns {
		fmt.Fprintln(out, p)
	}
	return nil
}

func runSetRm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeletePatternSet(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ removed %s\n", args[0])
	return nil
}
