package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/corey/kwmatch/internal/adapters/socket"
	"github.com/corey/kwmatch/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorCyan  = "\033[36m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// palette wraps text in ANSI codes when color is on.
type palette bool

func (p palette) wrap(code, s string) string {
	if !p {
		return s
	}
	return code + s + colorReset
}

// resolveColor determines whether to color output written to w.
// "auto" colors only when w is a terminal.
func resolveColor(mode string, w io.Writer) palette {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		f, ok := w.(*os.File)
		if !ok {
			return false
		}
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return fi.Mode()&os.ModeCharDevice != 0
	}
}

// lineResult is one line's result in --lines mode.
type lineResult struct {
	Line int `json:"line"`
	*socket.FindResult
}

// toFindResult converts matcher output to the shared result shape.
func toFindResult(matched, observed []string, occurrences []ports.TermMatch) *socket.FindResult {
	res := &socket.FindResult{Matched: matched, Count: len(matched), Observed: observed}
	for _, m := range occurrences {
		res.Matches = append(res.Matches, socket.TermMatch{Term: m.Term, Start: m.Start, End: m.End})
	}
	return res
}

// writeJSON writes v as one line of JSON. Patterns keep their '&' unescaped.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// formatMatched formats matched patterns one per line. A non-zero line
// number prefixes each pattern grep-style ("12:pattern").
//
//	error&timeout
//	3:disk&full
func formatMatched(res *socket.FindResult, line int, c palette) string {
	var sb strings.Builder
	for _, p := range res.Matched {
		if line > 0 {
			sb.WriteString(c.wrap(colorGreen, fmt.Sprintf("%d", line)))
			sb.WriteString(":")
		}
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatExplain lists term occurrences and the patterns they satisfied.
//
//	terms:
//	  0-3      new
//	  4-11     catalog
//	matched:
//	  catalog&new
func formatExplain(res *socket.FindResult, c palette) string {
	var sb strings.Builder
	sb.WriteString(c.wrap(colorBold, "terms:"))
	sb.WriteString("\n")
	if len(res.Matches) == 0 {
		sb.WriteString(c.wrap(colorGray, "  (none)"))
		sb.WriteString("\n")
	}
	for _, m := range res.Matches {
		sb.WriteString(fmt.Sprintf("  %-8s %s\n", fmt.Sprintf("%d-%d", m.Start, m.End), c.wrap(colorCyan, m.Term)))
	}
	sb.WriteString(c.wrap(colorBold, "matched:"))
	sb.WriteString("\n")
	if len(res.Matched) == 0 {
		sb.WriteString(c.wrap(colorGray, "  (none)"))
		sb.WriteString("\n")
	}
	for _, p := range res.Matched {
		sb.WriteString("  ")
		sb.WriteString(c.wrap(colorGreen, p))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult, c palette) string {
	logic := "on"
	if !h.Logic {
		logic = "off"
	}
	status := c.wrap(colorGreen, h.Status)
	if h.Status != "ok" {
		status = c.wrap(colorRed, h.Status)
	}

	var sb strings.Builder
	sb.WriteString(c.wrap(colorBold, "⚡ kwmatch daemon"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Status:    %s\n", status))
	sb.WriteString(fmt.Sprintf("  Source:    %s\n", h.Source))
	sb.WriteString(fmt.Sprintf("  Logic:     %s\n", logic))
	sb.WriteString(fmt.Sprintf("  Patterns:  %d\n", h.Patterns))
	sb.WriteString(fmt.Sprintf("  Terms:     %d\n", h.Terms))
	sb.WriteString(fmt.Sprintf("  Builds:    %d\n", h.Builds))
	sb.WriteString(fmt.Sprintf("  Finds:     %d (%d matched)\n", h.FindCount, h.MatchCount))
	sb.WriteString(fmt.Sprintf("  Uptime:    %s\n", h.Uptime))
	if h.LastError != "" {
		sb.WriteString(fmt.Sprintf("  Last error: %s\n", c.wrap(colorRed, h.LastError)))
	}
	return sb.String()
}

// formatSets formats stored pattern sets, one per line.
//
//	alerts   12 patterns  2026-01-02T15:04:05Z
func formatSets(sets []ports.PatternSetInfo, c palette) string {
	if len(sets) == 0 {
		return "no pattern sets\n"
	}
	width := 0
	for _, s := range sets {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}
	var sb strings.Builder
	for _, s := range sets {
		updated := time.Unix(s.UpdatedAt, 0).UTC().Format(time.RFC3339)
		sb.WriteString(fmt.Sprintf("%s%s  %d patterns  %s\n",
			c.wrap(colorCyan, s.Name), strings.Repeat(" ", width-len(s.Name)),
			s.Count, c.wrap(colorGray, updated)))
	}
	return sb.String()
}

// formatReload formats a ReloadResult.
func formatReload(r *socket.ReloadResult) string {
	return fmt.Sprintf("⚡ rebuilt %d patterns (%d terms) │ %s\n", r.Patterns, r.Terms, r.Elapsed)
}
