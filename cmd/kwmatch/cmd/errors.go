package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/kwmatch/internal/adapters/bbolt"
	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/corey/kwmatch/internal/app"
	"github.com/corey/kwmatch/internal/config"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when a bbolt open fails due to lock contention.
func diagnoseDBLock(sockPath string) string {
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "database is locked by the running daemon\n" +
			"  → stop it first:  kwmatch daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("database is locked; daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'kwmatch daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'kwmatch'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

// openStore opens the pattern-set database, explaining lock contention.
func openStore(cfg *config.Config) (*bbolt.Store, error) {
	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("%s", diagnoseDBLock(cfg.SocketPath))
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// loadSet reads a stored pattern set, failing if it does not exist.
func loadSet(cfg *config.Config, name string) ([]string, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	patterns, err := store.LoadPatternSet(name)
	if err != nil {
		return nil, err
	}
	if patterns == nil {
		return nil, fmt.Errorf("%w: %s", app.ErrSetNotFound, name)
	}
	return patterns, nil
}
