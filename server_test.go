package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

func runSession(t *testing.T, input string) []string {
	t.Helper()

	mgr := NewProcessManager()
	tools := NewToolTable(mgr, NewCapabilitySet(mgr))
	var out bytes.Buffer

	session := NewSession(strings.NewReader(input), &out, tools)
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("session failed: %v", err)
	}

	raw := strings.TrimSpace(out.String())
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func decodeResponse(t *testing.T, line string) jsonRPCResponse {
	t.Helper()
	var resp jsonRPCResponse
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		t.Fatalf("invalid response line %q: %v", line, err)
	}
	if resp.JSONRPC != "2.0" {
		t.Errorf("expected jsonrpc 2.0, got %q", resp.JSONRPC)
	}
	return resp
}

func initRequest(version string) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":%q,"capabilities":{}}}`, version)
}

func TestInitializeVersionNegotiation(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"1.0", true},
		{"2024-11-05", true},
		{"2025-03-26", true},
		{"2025-06-18", true},
		{"2099-12-31", true}, // date-shaped versions pass
		{"abc", false},
		{"2.0", false},
		{"2025-6-18", false},
	}

	for _, tt := range tests {
		lines := runSession(t, initRequest(tt.version)+"\n")
		if len(lines) != 1 {
			t.Fatalf("%s: expected 1 response, got %d", tt.version, len(lines))
		}
		resp := decodeResponse(t, lines[0])

		if tt.ok {
			if resp.Error != nil {
				t.Errorf("%s: unexpected error: %v", tt.version, resp.Error)
				continue
			}
			result, _ := resp.Result.(map[string]any)
			if result["protocolVersion"] != tt.version {
				t.Errorf("%s: expected echoed version, got %v", tt.version, result["protocolVersion"])
			}
			info, _ := result["serverInfo"].(map[string]any)
			if info["name"] != serverName {
				t.Errorf("%s: unexpected server name %v", tt.version, info["name"])
			}
		} else {
			if resp.Error == nil {
				t.Errorf("%s: expected error", tt.version)
				continue
			}
			if resp.Error.Code != errCodeInvalidParams {
				t.Errorf("%s: expected code %d, got %d", tt.version, errCodeInvalidParams, resp.Error.Code)
			}
			if !strings.Contains(resp.Error.Message, "supported") {
				t.Errorf("%s: error should name supported versions, got %q", tt.version, resp.Error.Message)
			}
		}
	}
}

func TestInitializeMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no protocolVersion", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"capabilities":{}}}`},
		{"no capabilities", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"1.0"}}`},
		{"no params", `{"jsonrpc":"2.0","id":1,"method":"initialize"}`},
	}

	for _, tt := range tests {
		lines := runSession(t, tt.input+"\n")
		if len(lines) != 1 {
			t.Fatalf("%s: expected 1 response, got %d", tt.name, len(lines))
		}
		resp := decodeResponse(t, lines[0])
		if resp.Error == nil || resp.Error.Code != errCodeInvalidParams {
			t.Errorf("%s: expected invalid params error, got %+v", tt.name, resp)
		}
	}
}

func TestNotificationsAreNeverAnswered(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"notifications/initialized"}
{"jsonrpc":"2.0","method":"notifications/unknown_thing","params":{"x":1}}
`
	lines := runSession(t, input)
	if len(lines) != 0 {
		t.Errorf("expected no responses to notifications, got %v", lines)
	}
}

func TestMalformedLineDoesNotEndSession(t *testing.T) {
	input := "this is not json\n" +
		`{"jsonrpc":"2.0","id":5,"method":"tools/list"}` + "\n"

	lines := runSession(t, input)
	if len(lines) != 1 {
		t.Fatalf("expected 1 response after malformed line, got %d", len(lines))
	}
	resp := decodeResponse(t, lines[0])
	if resp.Error != nil {
		t.Errorf("unexpected error: %v", resp.Error)
	}
}

func TestEmptyLinesAreSkipped(t *testing.T) {
	input := "\n\n" + `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n\n"
	lines := runSession(t, input)
	if len(lines) != 1 {
		t.Errorf("expected 1 response, got %d", len(lines))
	}
}

func TestShutdownAcknowledgesAndKeepsServing(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"shutdown"}
{"jsonrpc":"2.0","id":2,"method":"tools/list"}
`
	lines := runSession(t, input)
	if len(lines) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(lines))
	}

	first := decodeResponse(t, lines[0])
	result, _ := first.Result.(map[string]any)
	if result["status"] != "shutdown" {
		t.Errorf("expected shutdown ack, got %v", first.Result)
	}

	second := decodeResponse(t, lines[1])
	if second.Error != nil {
		t.Errorf("session should keep serving after shutdown, got %v", second.Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	lines := runSession(t, `{"jsonrpc":"2.0","id":9,"method":"bogus/method"}`+"\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 response, got %d", len(lines))
	}
	resp := decodeResponse(t, lines[0])
	if resp.Error == nil || resp.Error.Code != errCodeMethodNotFound {
		t.Errorf("expected method not found, got %+v", resp)
	}
}

func TestToolsListServesCatalog(t *testing.T) {
	lines := runSession(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n")
	resp := decodeResponse(t, lines[0])

	result, _ := resp.Result.(map[string]any)
	toolDefs, _ := result["tools"].([]any)
	if len(toolDefs) != 14 {
		t.Errorf("expected 14 tools, got %d", len(toolDefs))
	}
}

func TestToolsCallRequiresName(t *testing.T) {
	lines := runSession(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`+"\n")
	resp := decodeResponse(t, lines[0])
	if resp.Error == nil || resp.Error.Code != errCodeInvalidParams {
		t.Errorf("expected invalid params, got %+v", resp)
	}
}

func TestTopLevelToolShim(t *testing.T) {
	// Tools are callable both through tools/call and as bare methods; the
	// two paths must behave identically.
	viaShim := runSession(t, `{"jsonrpc":"2.0","id":1,"method":"stop_app","params":{"process_id":"nope"}}`+"\n")
	viaCall := runSession(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"stop_app","arguments":{"process_id":"nope"}}}`+"\n")

	shimResp := decodeResponse(t, viaShim[0])
	callResp := decodeResponse(t, viaCall[0])

	if shimResp.Error == nil || callResp.Error == nil {
		t.Fatal("expected errors for unknown process on both paths")
	}
	if shimResp.Error.Code != callResp.Error.Code {
		t.Errorf("codes diverge: shim %d, call %d", shimResp.Error.Code, callResp.Error.Code)
	}
	if shimResp.Error.Message != callResp.Error.Message {
		t.Errorf("messages diverge: %q vs %q", shimResp.Error.Message, callResp.Error.Message)
	}
}

func TestEveryListedToolIsDispatchable(t *testing.T) {
	mgr := NewProcessManager()
	tools := NewToolTable(mgr, NewCapabilitySet(mgr))

	for _, def := range tools.Defs() {
		input := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":{}}`, def.Name) + "\n"

		var out bytes.Buffer
		session := NewSession(strings.NewReader(input), &out, tools)
		if err := session.Run(context.Background()); err != nil {
			t.Fatalf("%s: session failed: %v", def.Name, err)
		}

		resp := decodeResponse(t, strings.TrimSpace(out.String()))
		if resp.Error != nil && resp.Error.Code == errCodeMethodNotFound {
			t.Errorf("%s: listed tool is not dispatchable", def.Name)
		}
	}
}

func TestLaunchStopLogsLifecycleOverWire(t *testing.T) {
	if _, err := os.Stat("/bin/true"); err != nil {
		t.Skip("test relies on /bin/true")
	}

	mgr := NewProcessManager()
	tools := NewToolTable(mgr, NewCapabilitySet(mgr))

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	session := NewSession(inR, outW, tools)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background())
	}()

	out := bufio.NewReader(outR)
	send := func(line string) jsonRPCResponse {
		t.Helper()
		if _, err := inW.Write([]byte(line + "\n")); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		respLine, err := out.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		return decodeResponse(t, strings.TrimSpace(respLine))
	}

	// Launch a short-lived app and pick up its session id from the wire.
	launch := send(`{"jsonrpc":"2.0","id":1,"method":"launch_app","params":{"app_path":"/bin/true"}}`)
	if launch.Error != nil {
		t.Fatalf("launch failed: %v", launch.Error)
	}
	launchResult, _ := launch.Result.(map[string]any)
	if launchResult["status"] != "launched" {
		t.Errorf("expected status launched, got %v", launchResult["status"])
	}
	id, _ := launchResult["process_id"].(string)
	if id == "" {
		t.Fatalf("expected a process_id, got %v", launch.Result)
	}

	stop := send(fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"stop_app","params":{"process_id":%q}}`, id))
	if stop.Error != nil {
		t.Fatalf("stop failed: %v", stop.Error)
	}
	stopResult, _ := stop.Result.(map[string]any)
	if stopResult["status"] != "stopped" {
		t.Errorf("expected status stopped, got %v", stop.Result)
	}

	// Stop removed the record, so its logs are unreachable afterwards.
	logs := send(fmt.Sprintf(`{"jsonrpc":"2.0","id":3,"method":"get_app_logs","params":{"process_id":%q}}`, id))
	if logs.Error == nil {
		t.Fatalf("expected error for logs after stop, got %v", logs.Result)
	}
	if !strings.Contains(logs.Error.Message, "unknown process") {
		t.Errorf("unexpected error message: %q", logs.Error.Message)
	}

	inW.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("session ended with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("session did not end after input close")
	}
}

func TestLaunchErrorMapsToInvalidParams(t *testing.T) {
	lines := runSession(t,
		`{"jsonrpc":"2.0","id":1,"method":"launch_app","params":{"app_path":"/no/such/app"}}`+"\n")
	resp := decodeResponse(t, lines[0])
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != errCodeInvalidParams {
		t.Errorf("expected code %d, got %d", errCodeInvalidParams, resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "does not exist") {
		t.Errorf("unexpected message: %q", resp.Error.Message)
	}
}
