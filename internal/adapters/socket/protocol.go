// Package socket implements a JSON-over-Unix-socket protocol for the kwmatch daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import "encoding/json"

// MaxMessageBytes bounds one request or response line. Haystacks travel
// inside find requests, so this is also the largest haystack the daemon accepts.
const MaxMessageBytes = 16 * 1024 * 1024

// Method names for the protocol.
const (
	MethodFind     = "find"
	MethodHealth   = "health"
	MethodReload   = "reload"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// FindParams is the params for a find request.
type FindParams struct {
	Haystack string `json:"haystack"`
	Explain  bool   `json:"explain,omitempty"`
}

// FindResult is the result of a find request.
type FindResult struct {
	Matched  []string    `json:"matched"`
	Count    int         `json:"count"`
	Observed []string    `json:"observed,omitempty"` // explain only
	Matches  []TermMatch `json:"matches,omitempty"`  // explain only
	Elapsed  string      `json:"elapsed,omitempty"`  // daemon only
}

// TermMatch is one term occurrence (wire format).
type TermMatch struct {
	Term  string `json:"term"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status     string `json:"status"`
	Source     string `json:"source"`
	Logic      bool   `json:"logic"`
	Patterns   int    `json:"patterns"`
	Terms      int    `json:"terms"`
	Builds     int    `json:"builds"`
	LastError  string `json:"last_error,omitempty"` // most recent failed rebuild
	Uptime     string `json:"uptime"`
	FindCount  uint64 `json:"find_count"`
	MatchCount uint64 `json:"match_count"`
}

// ReloadResult is the result of a reload request.
type ReloadResult struct {
	Patterns int    `json:"patterns"`
	Terms    int    `json:"terms"`
	Elapsed  string `json:"elapsed"`
}
