package cmd

import (
	"fmt"
	"io"

	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "JSON output")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	client := socket.NewClient(cfg.SocketPath)

	if !client.Ping() {
		fmt.Fprintln(out, "⚡ kwmatch daemon is not running")
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}

	if healthJSON {
		return writeJSON(out, health)
	}
	_, err = io.WriteString(out, formatHealth(health, resolveColor(colorMode, out)))
	return err
}
