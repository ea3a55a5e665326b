package ports

// Watcher monitors pattern files for changes so the matcher can be rebuilt.
// Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring the given files. onChange is called with the
	// absolute path of a file after it is written, created, renamed or removed.
	// The callback may be invoked from any goroutine. Returns an error if a
	// file's directory doesn't exist or permissions are insufficient.
	Watch(paths []string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
