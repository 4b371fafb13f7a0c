package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const serverName = "tauripilot"

const serverDescription = "MCP server for driving and inspecting Tauri desktop applications"

// supportedVersions is the fixed protocol version allow-list. Date-shaped
// strings outside the list are also accepted so newer clients keep working.
var supportedVersions = []string{"1.0", "2024-11-05", "2025-03-26", "2025-06-18"}

var dateVersionPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func versionSupported(v string) bool {
	for _, s := range supportedVersions {
		if v == s {
			return true
		}
	}
	return dateVersionPattern.MatchString(v)
}

// Session runs the line-delimited JSON-RPC loop over a single in/out pair,
// stdin and stdout in production. One session exists per server run; it holds
// the negotiated protocol version and the tool table.
type Session struct {
	in    io.Reader
	out   *bufio.Writer
	tools *ToolTable

	protocolVersion string
}

func NewSession(in io.Reader, out io.Writer, tools *ToolTable) *Session {
	return &Session{
		in:    in,
		out:   bufio.NewWriter(out),
		tools: tools,
	}
}

// Run reads requests until EOF. Malformed lines are logged and skipped: a
// broken client must not take the session down. Every response is one JSON
// line, flushed immediately.
func (s *Session) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			LogWarn("Session", "Malformed request line", err.Error())
			continue
		}

		if req.IsNotification() {
			s.handleNotification(&req)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if err := s.writeResponse(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request stream: %w", err)
	}
	return nil
}

// handleNotification processes fire-and-forget messages. Notifications are
// never answered, not even with an error.
func (s *Session) handleNotification(req *jsonRPCRequest) {
	switch req.Method {
	case "notifications/initialized":
		LogInfo("Session", "Client initialized")
	default:
		LogWarn("Session", "Unhandled notification", req.Method)
	}
}

func (s *Session) handleRequest(ctx context.Context, req *jsonRPCRequest) *jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)

	case "shutdown":
		// Acknowledge and keep serving; the session ends when stdin closes.
		LogInfo("Session", "Shutdown requested")
		return newResultResponse(req.ID, map[string]any{"status": "shutdown"})

	case "tools/list":
		return newResultResponse(req.ID, map[string]any{"tools": s.tools.Defs()})

	case "tools/call":
		var params struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return newErrorResponse(req.ID, errCodeInvalidParams, "invalid tools/call params: "+err.Error(), nil)
			}
		}
		if params.Name == "" {
			return newErrorResponse(req.ID, errCodeInvalidParams, "missing tool name", nil)
		}
		return s.dispatch(ctx, req.ID, params.Name, params.Arguments)

	default:
		// Top-level shim: every tool is also callable as a method, with
		// params as the argument object.
		if s.tools.Has(req.Method) {
			var args map[string]any
			if len(req.Params) > 0 {
				if err := json.Unmarshal(req.Params, &args); err != nil {
					return newErrorResponse(req.ID, errCodeInvalidParams, "invalid params: "+err.Error(), nil)
				}
			}
			return s.dispatch(ctx, req.ID, req.Method, args)
		}
		return newErrorResponse(req.ID, errCodeMethodNotFound,
			fmt.Sprintf("method not found: %s", req.Method), nil)
	}
}

func (s *Session) handleInitialize(req *jsonRPCRequest) *jsonRPCResponse {
	var params struct {
		ProtocolVersion *string        `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ClientInfo      map[string]any `json:"clientInfo"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return newErrorResponse(req.ID, errCodeInvalidParams, "invalid initialize params: "+err.Error(), nil)
		}
	}
	if params.ProtocolVersion == nil {
		return newErrorResponse(req.ID, errCodeInvalidParams, "missing protocolVersion", nil)
	}
	if params.Capabilities == nil {
		return newErrorResponse(req.ID, errCodeInvalidParams, "missing capabilities", nil)
	}

	requested := *params.ProtocolVersion
	if !versionSupported(requested) {
		return newErrorResponse(req.ID, errCodeInvalidParams,
			fmt.Sprintf("unsupported protocol version: %s (supported: %s)",
				requested, strings.Join(supportedVersions, ", ")), nil)
	}

	// Recorded once; repeated initialize calls re-validate but do not move
	// the negotiated version.
	if s.protocolVersion == "" {
		s.protocolVersion = requested
	}
	LogInfo("Session", "Initialize", fmt.Sprintf("Protocol version: %s", requested))

	return newResultResponse(req.ID, map[string]any{
		"protocolVersion": requested,
		"serverInfo": map[string]any{
			"name":        serverName,
			"version":     version,
			"description": serverDescription,
		},
		"capabilities": map[string]any{
			"tools":     map[string]any{"listTools": true},
			"resources": map[string]any{},
			"prompts":   map[string]any{},
			"logging":   map[string]any{},
		},
	})
}

// dispatch runs a tool and maps its error to a JSON-RPC error object. Typed
// rpcError values keep their code; anything else reports as invalid params,
// which covers tool-level failures like a missing app path.
func (s *Session) dispatch(ctx context.Context, id any, name string, args map[string]any) *jsonRPCResponse {
	result, err := s.tools.Call(ctx, name, args)
	if err != nil {
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			return newErrorResponse(id, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		}
		return newErrorResponse(id, errCodeInvalidParams, err.Error(), nil)
	}
	return newResultResponse(id, result)
}

func (s *Session) writeResponse(resp *jsonRPCResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		// Result failed to encode; the request id is still answerable.
		fallback := newErrorResponse(resp.ID, errCodeInternal, "failed to encode response", nil)
		payload, err = json.Marshal(fallback)
		if err != nil {
			return err
		}
	}
	if _, err := s.out.Write(payload); err != nil {
		return err
	}
	if err := s.out.WriteByte('\n'); err != nil {
		return err
	}
	return s.out.Flush()
}
