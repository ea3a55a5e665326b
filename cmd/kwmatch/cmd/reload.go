package cmd

import (
	"fmt"
	"io"

	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rebuild the daemon's patterns from its configured source",
	Long: `Ask the daemon to reload and rebuild its patterns. If the rebuild fails the
daemon keeps serving the previous patterns and the error is reported here.`,
	Args: cobra.NoArgs,
	RunE: runReload,
}

func runReload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := socket.NewClient(cfg.SocketPath)
	if !client.Ping() {
		return fmt.Errorf("daemon is not running (start it with: kwmatch daemon start)")
	}

	res, err := client.Reload()
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), formatReload(res))
	return err
}
