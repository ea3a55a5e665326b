package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points KWMATCH_CONFIG at a nonexistent file so a developer's
// environment cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("KWMATCH_CONFIG", filepath.Join(root, "absent.yaml"))
	for _, k := range []string{"KWMATCH_LOGIC", "KWMATCH_WORKERS", "KWMATCH_PATTERNS",
		"KWMATCH_SET", "KWMATCH_DB", "KWMATCH_SOCKET", "KWMATCH_WATCH", "KWMATCH_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return root
}

func writeConfig(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, DirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	t.Setenv("KWMATCH_CONFIG", path)
}

func TestDefaultConfig(t *testing.T) {
	root := isolate(t)
	cfg, err := Load(root)
	require.NoError(t, err)

	assert.True(t, cfg.Logic)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, filepath.Join(root, DirName, "kwmatch.db"), cfg.DBPath)
	assert.Equal(t, SocketPath(root), cfg.SocketPath)
	assert.Empty(t, cfg.PatternsFile)
	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestLoadFromFile(t *testing.T) {
	root := isolate(t)
	writeConfig(t, root, `
logic: false
workers: 3
patterns_file: rules/patterns.txt
watch: false
log_level: debug
`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.False(t, cfg.Logic)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, filepath.Join(root, "rules", "patterns.txt"), cfg.PatternsFile)
	assert.False(t, cfg.Watch)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	root := isolate(t)
	writeConfig(t, root, "logic: false\nworkers: 3\n")
	t.Setenv("KWMATCH_LOGIC", "yes")
	t.Setenv("KWMATCH_WORKERS", "7")
	t.Setenv("KWMATCH_SET", "alerts")
	t.Setenv("KWMATCH_SOCKET", "/tmp/custom.sock")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.True(t, cfg.Logic)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, "alerts", cfg.PatternSet)
	assert.Equal(t, "/tmp/custom.sock", cfg.SocketPath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "logic: [unclosed"},
		{name: "bad bool env", env: map[string]string{"KWMATCH_LOGIC": "maybe"}},
		{name: "bad workers env", env: map[string]string{"KWMATCH_WORKERS": "many"}},
		{name: "negative workers", yaml: "workers: -1"},
		{name: "both sources", yaml: "patterns_file: p.txt\npattern_set: s"},
		{name: "bad log level", yaml: "log_level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := isolate(t)
			if tt.yaml != "" {
				writeConfig(t, root, tt.yaml)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(root)
			assert.Error(t, err)
		})
	}
}

func TestSocketPath_StablePerRoot(t *testing.T) {
	a := SocketPath("/srv/project-a")
	assert.Equal(t, a, SocketPath("/srv/project-a"))
	assert.NotEqual(t, a, SocketPath("/srv/project-b"))
	assert.Regexp(t, `^/tmp/kwmatch-[0-9a-f]{12}\.sock$`, a)
}
