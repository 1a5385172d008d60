// Package rpc exposes the session manager over newline-delimited JSON-RPC
// 2.0, the boundary a UI process drives through the server's stdio pipes.
// Terminal output and exit events flow the other way as notifications.
package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhubert/termhub/internal/bridge"
	"github.com/zhubert/termhub/internal/errors"
	"github.com/zhubert/termhub/internal/logger"
	"github.com/zhubert/termhub/internal/shell"
	"github.com/zhubert/termhub/internal/term"
)

// Server implements the JSON-RPC boundary over a reader/writer pair.
type Server struct {
	reader   *bufio.Reader
	writer   io.Writer
	manager  *term.Manager
	resolver *shell.Resolver

	removeForwarder func()

	mu  sync.Mutex // guards writer
	log *slog.Logger
}

// NewServer creates a Server and, when events is non-nil, registers itself
// as a forwarder so terminal.data / terminal.exit notifications flow to the
// client. Call Close to detach from the bridge.
func NewServer(r io.Reader, w io.Writer, manager *term.Manager, resolver *shell.Resolver, events *bridge.Bridge) *Server {
	s := &Server{
		reader:   bufio.NewReader(r),
		writer:   w,
		manager:  manager,
		resolver: resolver,
		log:      logger.ComponentLogger("rpc"),
	}
	if events != nil {
		s.removeForwarder = events.Add(s)
	}
	return s
}

// Run processes requests until the reader is exhausted.
func (s *Server) Run() error {
	s.log.Info("rpc server starting")

	for {
		line, err := s.reader.ReadString('\n')
		if err == io.EOF {
			s.log.Info("EOF received, shutting down")
			return nil
		}
		if err != nil {
			s.log.Error("read error", "error", err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.log.Error("JSON parse error", "error", err)
			s.sendError(nil, CodeParseError, "Parse error", nil)
			continue
		}

		s.handleRequest(&req)
	}
}

// Close detaches the server from the event bridge.
func (s *Server) Close() {
	if s.removeForwarder != nil {
		s.removeForwarder()
	}
}

func (s *Server) handleRequest(req *JSONRPCRequest) {
	switch req.Method {
	case "terminal.spawn":
		s.handleSpawn(req)
	case "terminal.write":
		s.handleWrite(req)
	case "terminal.resize":
		s.handleResize(req)
	case "terminal.kill":
		s.handleKill(req)
	case "terminal.get":
		s.handleGet(req)
	case "terminal.getAll":
		s.sendResult(req.ID, GetAllResult{Sessions: s.manager.GetAll()})
	case "terminal.getAllIds":
		s.sendResult(req.ID, GetAllIDsResult{SessionIDs: s.manager.GetAllIDs()})
	case "terminal.addRef":
		s.handleAddRef(req)
	case "terminal.removeRef":
		s.handleRemoveRef(req)
	case "terminal.killAll":
		s.manager.KillAll()
		s.sendResult(req.ID, OKResult{OK: true})
	case "terminal.updateSettings":
		s.handleUpdateSettings(req)
	case "shell.list":
		s.handleShellList(req)
	default:
		s.log.Warn("unknown method", "method", req.Method)
		s.sendError(req.ID, CodeMethodNotFound, "Method not found", nil)
	}
}

func (s *Server) handleSpawn(req *JSONRPCRequest) {
	var p SpawnParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
			return
		}
	}

	cols, rows := 0, 0
	if p.Cols != 0 {
		var ok bool
		if cols, ok = intDim(p.Cols); !ok {
			s.sendError(req.ID, CodeInvalidParams, "cols must be a positive integer", p.Cols)
			return
		}
	}
	if p.Rows != 0 {
		var ok bool
		if rows, ok = intDim(p.Rows); !ok {
			s.sendError(req.ID, CodeInvalidParams, "rows must be a positive integer", p.Rows)
			return
		}
	}

	id, err := s.manager.Spawn(term.SpawnOptions{
		Shell: p.Shell,
		Cwd:   p.Cwd,
		Env:   p.Env,
		Cols:  cols,
		Rows:  rows,
	})
	if err != nil {
		s.sendError(req.ID, errorCode(err), err.Error(), nil)
		return
	}
	s.sendResult(req.ID, SpawnResult{SessionID: id})
}

func (s *Server) handleWrite(req *JSONRPCRequest) {
	var p WriteParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}
	s.sendResult(req.ID, OKResult{OK: s.manager.Write(p.SessionID, p.Data)})
}

func (s *Server) handleResize(req *JSONRPCRequest) {
	var p ResizeParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}

	cols, ok := intDim(p.Cols)
	if !ok {
		s.sendError(req.ID, CodeInvalidParams, "cols must be a positive integer", p.Cols)
		return
	}
	rows, ok := intDim(p.Rows)
	if !ok {
		s.sendError(req.ID, CodeInvalidParams, "rows must be a positive integer", p.Rows)
		return
	}

	found, err := s.manager.Resize(p.SessionID, cols, rows)
	if err != nil {
		s.sendError(req.ID, CodeInvalidParams, err.Error(), nil)
		return
	}
	s.sendResult(req.ID, OKResult{OK: found})
}

func (s *Server) handleKill(req *JSONRPCRequest) {
	var p SessionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}
	s.sendResult(req.ID, OKResult{OK: s.manager.Kill(p.SessionID)})
}

func (s *Server) handleGet(req *JSONRPCRequest) {
	var p SessionParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}
	if info, ok := s.manager.Get(p.SessionID); ok {
		s.sendResult(req.ID, GetResult{Session: &info})
		return
	}
	s.sendResult(req.ID, GetResult{Session: nil})
}

func (s *Server) handleAddRef(req *JSONRPCRequest) {
	var p RefParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}
	token := p.Token
	if token == "" {
		token = uuid.New().String()
	}
	ok := s.manager.AddObserverRef(p.SessionID, token)
	s.sendResult(req.ID, RefResult{OK: ok, Token: token})
}

func (s *Server) handleRemoveRef(req *JSONRPCRequest) {
	var p RefParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}
	ok := s.manager.RemoveObserverRef(p.SessionID, p.Token)
	s.sendResult(req.ID, RefResult{OK: ok, Token: p.Token})
}

func (s *Server) handleUpdateSettings(req *JSONRPCRequest) {
	var p SettingsParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
			return
		}
	}

	next := s.manager.Settings()
	if p.SweepIntervalSeconds != nil {
		next.SweepInterval = time.Duration(*p.SweepIntervalSeconds * float64(time.Second))
	}
	if p.GraceTimeoutSeconds != nil {
		next.GraceTimeout = time.Duration(*p.GraceTimeoutSeconds * float64(time.Second))
	}
	if p.MaxSessions != nil {
		n, ok := intDim(*p.MaxSessions)
		if !ok {
			s.sendError(req.ID, CodeInvalidParams, "maxSessions must be a positive integer", *p.MaxSessions)
			return
		}
		next.MaxSessions = n
	}
	if p.DefaultCols != nil {
		n, ok := intDim(*p.DefaultCols)
		if !ok {
			s.sendError(req.ID, CodeInvalidParams, "defaultCols must be a positive integer", *p.DefaultCols)
			return
		}
		next.DefaultCols = n
	}
	if p.DefaultRows != nil {
		n, ok := intDim(*p.DefaultRows)
		if !ok {
			s.sendError(req.ID, CodeInvalidParams, "defaultRows must be a positive integer", *p.DefaultRows)
			return
		}
		next.DefaultRows = n
	}

	s.manager.UpdateSettings(next)
	s.sendResult(req.ID, OKResult{OK: true})
}

func (s *Server) handleShellList(req *JSONRPCRequest) {
	available := s.resolver.ListAvailable()
	shells := make([]ShellInfo, 0, len(available))
	for _, info := range available {
		shells = append(shells, ShellInfo{Name: info.Name, Path: info.Path})
	}
	s.sendResult(req.ID, ShellListResult{Shells: shells})
}

// ForwardData implements bridge.Forwarder.
func (s *Server) ForwardData(sessionID, data string) {
	s.sendNotification("terminal.data", DataEvent{SessionID: sessionID, Data: data})
}

// ForwardExit implements bridge.Forwarder.
func (s *Server) ForwardExit(sessionID string, exitCode int, signal string) {
	s.sendNotification("terminal.exit", ExitEvent{SessionID: sessionID, ExitCode: exitCode, Signal: signal})
}

// intDim validates that a JSON number is a positive integer dimension. The
// wire format carries all numbers as float64, so 80.5 arrives intact and
// must be rejected here rather than silently truncated.
func intDim(v float64) (int, bool) {
	if v <= 0 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// errorCode maps domain error kinds onto wire codes.
func errorCode(err error) int {
	switch errors.GetKind(err) {
	case errors.KindLimit:
		return CodeSessionLimit
	case errors.KindSpawn:
		return CodeSpawnFailed
	case errors.KindInvalid:
		return CodeInvalidParams
	case errors.KindNotFound:
		return CodeInvalidParams
	default:
		return CodeInternalError
	}
}

func (s *Server) sendResult(id interface{}, result interface{}) {
	s.send(JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	s.send(JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message, Data: data}})
}

func (s *Server) sendNotification(method string, params interface{}) {
	s.send(JSONRPCNotification{JSONRPC: "2.0", Method: method, Params: params})
}

func (s *Server) send(msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.writer, "%s\n", payload); err != nil {
		s.log.Error("write failed", "error", err)
	}
}
