package rpc

import (
	"encoding/json"

	"github.com/zhubert/termhub/internal/term"
)

// JSON-RPC 2.0 message types for the terminal control boundary

// JSONRPCRequest represents an incoming JSON-RPC request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents an outgoing JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// JSONRPCNotification represents an outgoing server-initiated event
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// RPCError represents a JSON-RPC error
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Standard JSON-RPC error codes, plus application codes in the -32000 range.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeSessionLimit = -32000
	CodeSpawnFailed  = -32001
)

// SpawnParams for terminal.spawn. Cols and Rows arrive as JSON numbers and
// are validated to be positive integers; zero means "use the default".
type SpawnParams struct {
	Shell string            `json:"shell,omitempty"`
	Cwd   string            `json:"cwd,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
	Cols  float64           `json:"cols,omitempty"`
	Rows  float64           `json:"rows,omitempty"`
}

// SpawnResult for terminal.spawn
type SpawnResult struct {
	SessionID string `json:"sessionId"`
}

// WriteParams for terminal.write
type WriteParams struct {
	SessionID string `json:"sessionId"`
	Data      string `json:"data"`
}

// ResizeParams for terminal.resize
type ResizeParams struct {
	SessionID string  `json:"sessionId"`
	Cols      float64 `json:"cols"`
	Rows      float64 `json:"rows"`
}

// SessionParams for methods addressing one session by id
type SessionParams struct {
	SessionID string `json:"sessionId"`
}

// RefParams for terminal.addRef / terminal.removeRef. An empty token on
// addRef asks the server to mint one.
type RefParams struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token,omitempty"`
}

// RefResult for terminal.addRef / terminal.removeRef
type RefResult struct {
	OK    bool   `json:"ok"`
	Token string `json:"token,omitempty"`
}

// OKResult reports whether an operation found its session
type OKResult struct {
	OK bool `json:"ok"`
}

// GetResult for terminal.get; Session is null for an unknown id
type GetResult struct {
	Session *term.SessionInfo `json:"session"`
}

// GetAllResult for terminal.getAll
type GetAllResult struct {
	Sessions []term.SessionInfo `json:"sessions"`
}

// GetAllIDsResult for terminal.getAllIds
type GetAllIDsResult struct {
	SessionIDs []string `json:"sessionIds"`
}

// SettingsParams for terminal.updateSettings. Absent fields leave the
// current value unchanged; a zero sweepIntervalSeconds disables the sweep.
type SettingsParams struct {
	SweepIntervalSeconds *float64 `json:"sweepIntervalSeconds,omitempty"`
	GraceTimeoutSeconds  *float64 `json:"graceTimeoutSeconds,omitempty"`
	MaxSessions          *float64 `json:"maxSessions,omitempty"`
	DefaultCols          *float64 `json:"defaultCols,omitempty"`
	DefaultRows          *float64 `json:"defaultRows,omitempty"`
}

// ShellInfo is one entry in the shell.list result
type ShellInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ShellListResult for shell.list
type ShellListResult struct {
	Shells []ShellInfo `json:"shells"`
}

// DataEvent is the params payload of a terminal.data notification
type DataEvent struct {
	SessionID string `json:"sessionId"`
	Data      string `json:"data"`
}

// ExitEvent is the params payload of a terminal.exit notification
type ExitEvent struct {
	SessionID string `json:"sessionId"`
	ExitCode  int    `json:"exitCode"`
	Signal    string `json:"signal,omitempty"`
}
