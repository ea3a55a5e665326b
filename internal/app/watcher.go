package app

// onPatternFileChanged rebuilds after the watched pattern file changes.
// A failed rebuild (file mid-rename, bad pattern) keeps the previous state;
// Reload already logs and records the error.
func (a *App) onPatternFileChanged(path string) {
	a.log.Debug("pattern file changed", "path", path)
	a.Reload()
}
