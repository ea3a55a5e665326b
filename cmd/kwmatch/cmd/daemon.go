package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/corey/kwmatch/internal/app"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the kwmatch daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Build the configured patterns and serve them on a Unix socket (foreground)",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Check if already running
	client := socket.NewClient(cfg.SocketPath)
	if client.Ping() {
		fmt.Fprintln(out, "⚡ daemon already running")
		return nil
	}

	log := newLogger(cmd.ErrOrStderr(), cfg)
	a, err := app.New(cfg, log)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%s", diagnoseDBLock(cfg.SocketPath))
		}
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}

	fmt.Fprintf(out, "⚡ kwmatch daemon started at %s\n", cfg.SocketPath)

	// Wait for a signal or a remote shutdown request
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Fprintln(out, "⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	client := socket.NewClient(cfg.SocketPath)

	if !client.Ping() {
		fmt.Fprintln(out, "⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Fprintln(out, "⚡ daemon stopped")
	return nil
}
