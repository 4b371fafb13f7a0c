package main

import (
	"context"
	"fmt"
)

// Capability is one process-scoped operation that reaches outside the server:
// screen capture, synthetic input, DevTools, IPC. The record has already been
// resolved when a capability runs.
type Capability func(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error)

// CapabilitySet resolves the process record once and routes to the named
// capability. Platform-specific work goes through the platform adapter so the
// per-OS command plumbing stays in one place.
type CapabilitySet struct {
	mgr      *ProcessManager
	platform platformAdapter
	devtools *devtoolsClient
	ipc      *ipcRegistry

	caps map[string]Capability
}

func NewCapabilitySet(mgr *ProcessManager) *CapabilitySet {
	c := &CapabilitySet{
		mgr:      mgr,
		platform: newPlatform(),
		devtools: newDevtoolsClient(),
		ipc:      newIPCRegistry(),
	}
	c.caps = map[string]Capability{
		"take_screenshot":     c.takeScreenshot,
		"get_window_info":     c.windowInfo,
		"send_keyboard_input": c.keyboardInput,
		"send_mouse_click":    c.mouseClick,
		"execute_js":          c.executeJS,
		"get_devtools_info":   c.devtoolsInfo,
		"list_ipc_handlers":   c.listIPCHandlers,
		"call_ipc_command":    c.callIPCCommand,
	}
	return c
}

// Invoke runs the named capability against the tracked process. Every
// capability requires a known process id, including the ones that only need
// it for scoping.
func (c *CapabilitySet) Invoke(ctx context.Context, name, processID string, args map[string]any) (any, error) {
	capability, exists := c.caps[name]
	if !exists {
		return nil, methodNotFoundf("unknown capability: %s", name)
	}
	record, exists := c.mgr.Record(processID)
	if !exists {
		return nil, fmt.Errorf("unknown process: %s", processID)
	}
	return capability(ctx, record, args)
}
