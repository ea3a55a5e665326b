// Package app wires together all adapters and the matcher.
// It provides lifecycle management for the kwmatch daemon: create, start, stop.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/kwmatch"
	"github.com/corey/kwmatch/internal/adapters/bbolt"
	fsw "github.com/corey/kwmatch/internal/adapters/fsnotify"
	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/corey/kwmatch/internal/config"
	"github.com/corey/kwmatch/internal/ports"
)

var (
	// ErrNoSource is returned when neither a pattern file nor a pattern set is configured.
	ErrNoSource = errors.New("no pattern source configured (set patterns_file or pattern_set)")

	// ErrSetNotFound is returned when the configured pattern set does not exist.
	ErrSetNotFound = errors.New("pattern set not found")
)

// App is the top-level container wiring all components together.
type App struct {
	Matcher *kwmatch.Matcher
	Store   ports.PatternStore
	Server  *socket.Server
	Watcher ports.Watcher // nil unless watching a pattern file

	cfg     *config.Config
	log     *slog.Logger
	store   *bbolt.Store // owned; closed by Stop
	started time.Time

	reloadMu sync.Mutex // serializes loads so reload results match what was built
	builds   atomic.Int64
	finds    atomic.Uint64
	matches  atomic.Uint64

	errMu   sync.Mutex
	lastErr string // most recent failed rebuild, cleared on success

	stopOnce sync.Once
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		Matcher: kwmatch.New(kwmatch.WithLogic(cfg.Logic), kwmatch.WithWorkers(cfg.Workers)),
		Store:   store,
		cfg:     cfg,
		log:     logger,
		store:   store,
	}
	a.Server = socket.NewServer(a, cfg.SocketPath, logger.With("component", "socket"))
	return a, nil
}

// Source describes where patterns come from: "file:<path>", "set:<name>" or "none".
func (a *App) Source() string {
	switch {
	case a.cfg.PatternsFile != "":
		return "file:" + a.cfg.PatternsFile
	case a.cfg.PatternSet != "":
		return "set:" + a.cfg.PatternSet
	default:
		return "none"
	}
}

// loadPatterns reads raw patterns from the configured source.
func (a *App) loadPatterns() ([]string, error) {
	switch {
	case a.cfg.PatternsFile != "":
		return LoadPatternFile(a.cfg.PatternsFile)
	case a.cfg.PatternSet != "":
		patterns, err := a.Store.LoadPatternSet(a.cfg.PatternSet)
		if err != nil {
			return nil, fmt.Errorf("load set %q: %w", a.cfg.PatternSet, err)
		}
		if patterns == nil {
			return nil, fmt.Errorf("%w: %s", ErrSetNotFound, a.cfg.PatternSet)
		}
		return patterns, nil
	default:
		return nil, ErrNoSource
	}
}

// Reload rebuilds the matcher from the configured source. On failure the
// previous state keeps serving and the error is recorded for health.
func (a *App) Reload() (*socket.ReloadResult, error) {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	start := time.Now()
	patterns, err := a.loadPatterns()
	if err == nil {
		err = a.Matcher.Build(patterns)
	}
	if err != nil {
		a.setLastErr(err.Error())
		a.log.Warn("rebuild failed, keeping previous patterns", "source", a.Source(), "err", err)
		return nil, err
	}

	a.builds.Add(1)
	a.setLastErr("")
	stats := a.Matcher.Stats()
	elapsed := time.Since(start)
	a.log.Info("patterns built",
		"source", a.Source(),
		"patterns", stats.Patterns,
		"terms", stats.Terms,
		"elapsed", elapsed)
	return &socket.ReloadResult{
		Patterns: stats.Patterns,
		Terms:    stats.Terms,
		Elapsed:  elapsed.String(),
	}, nil
}

// Find matches one haystack against the current patterns.
func (a *App) Find(haystack string, explain bool) (*socket.FindResult, error) {
	start := time.Now()
	res := &socket.FindResult{}
	if explain {
		ex, err := a.Matcher.Explain(haystack)
		if err != nil {
			return nil, err
		}
		res.Matched = ex.Matched
		res.Observed = ex.Observed
		for _, m := range ex.Matches {
			res.Matches = append(res.Matches, socket.TermMatch{Term: m.Term, Start: m.Start, End: m.End})
		}
	} else {
		matched, err := a.Matcher.Find(haystack)
		if err != nil {
			return nil, err
		}
		res.Matched = matched
	}
	res.Count = len(res.Matched)
	res.Elapsed = time.Since(start).String()

	a.finds.Add(1)
	if res.Count > 0 {
		a.matches.Add(1)
	}
	a.log.Debug("find", "bytes", len(haystack), "matched", res.Count, "elapsed", res.Elapsed)
	return res, nil
}

// Health reports the daemon's current state.
func (a *App) Health() socket.HealthResult {
	stats := a.Matcher.Stats()
	status := "ok"
	if !stats.Built {
		status = "unbuilt"
	}
	var uptime time.Duration
	if !a.started.IsZero() {
		uptime = time.Since(a.started).Truncate(time.Second)
	}
	return socket.HealthResult{
		Status:     status,
		Source:     a.Source(),
		Logic:      stats.Logic,
		Patterns:   stats.Patterns,
		Terms:      stats.Terms,
		Builds:     int(a.builds.Load()),
		LastError:  a.getLastErr(),
		Uptime:     uptime.String(),
		FindCount:  a.finds.Load(),
		MatchCount: a.matches.Load(),
	}
}

// Start builds the matcher, then begins the daemon (socket server + watcher).
// The initial build must succeed; later rebuild failures are only logged.
func (a *App) Start() error {
	a.started = time.Now()
	if _, err := a.Reload(); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	a.log.Info("daemon listening", "socket", a.Server.Addr())

	if a.cfg.Watch && a.cfg.PatternsFile != "" {
		w, err := fsw.NewWatcher()
		if err != nil {
			a.log.Warn("file watcher unavailable", "err", err)
			return nil
		}
		if err := w.Watch([]string{a.cfg.PatternsFile}, a.onPatternFileChanged); err != nil {
			w.Stop()
			a.log.Warn("file watcher unavailable", "err", err)
			return nil
		}
		a.Watcher = w
		a.log.Info("watching pattern file", "path", a.cfg.PatternsFile)
	}
	return nil
}

// Stop shuts down all services and closes the store. Safe to call more than once.
func (a *App) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		if a.Watcher != nil {
			a.Watcher.Stop()
		}
		a.Server.Stop()
		err = a.store.Close()
	})
	return err
}

func (a *App) setLastErr(s string) {
	a.errMu.Lock()
	a.lastErr = s
	a.errMu.Unlock()
}

func (a *App) getLastErr() string {
	a.errMu.Lock()
	defer a.errMu.Unlock()
	return a.lastErr
}
