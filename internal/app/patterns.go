package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/corey/kwmatch/internal/adapters/socket"
)

// LoadPatternFile reads one pattern per line. Trailing "\r" is trimmed and
// blank lines are skipped; every other line is a pattern, verbatim.
func LoadPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open patterns: %w", err)
	}
	defer f.Close()

	patterns, err := ReadPatterns(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return patterns, nil
}

// ReadPatterns reads one pattern per line from r.
func ReadPatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), socket.MaxMessageBytes)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}
