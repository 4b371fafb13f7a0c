package main

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler executes one tool call. Arguments have already been checked
// for required keys against the tool's declared schema.
type toolHandler func(ctx context.Context, args map[string]any) (any, error)

type toolEntry struct {
	def     mcp.Tool
	handler toolHandler
}

// ToolTable is the dispatch registry: one map drives tools/list, tools/call,
// top-level method dispatch, and the single-shot -call mode, so the
// discoverable catalog and the callable set cannot drift apart. The table
// itself owns no state; all state lives in the lifecycle manager and the
// capabilities behind the handlers.
type ToolTable struct {
	order   []string
	entries map[string]*toolEntry
}

func (t *ToolTable) register(def mcp.Tool, handler toolHandler) {
	t.order = append(t.order, def.Name)
	t.entries[def.Name] = &toolEntry{def: def, handler: handler}
}

// Defs returns the tool definitions in registration order, as served by
// tools/list.
func (t *ToolTable) Defs() []mcp.Tool {
	defs := make([]mcp.Tool, 0, len(t.order))
	for _, name := range t.order {
		defs = append(defs, t.entries[name].def)
	}
	return defs
}

// Has reports whether name is a registered tool.
func (t *ToolTable) Has(name string) bool {
	_, exists := t.entries[name]
	return exists
}

// Call validates required arguments and invokes the tool. Validation is
// identical on every entry path.
func (t *ToolTable) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	entry, exists := t.entries[name]
	if !exists {
		return nil, methodNotFoundf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	for _, required := range entry.def.InputSchema.Required {
		if _, present := args[required]; !present {
			return nil, invalidParamsf("missing required argument: %s", required)
		}
	}
	return entry.handler(ctx, args)
}

// NewToolTable builds the full catalog: lifecycle tools backed by the
// process manager, plus the external capability wrappers.
func NewToolTable(mgr *ProcessManager, caps *CapabilitySet) *ToolTable {
	t := &ToolTable{entries: make(map[string]*toolEntry)}

	t.register(mcp.NewTool(
		"launch_app",
		mcp.WithDescription("Launch a desktop application and start capturing its stdout/stderr"),
		mcp.WithString("app_path",
			mcp.Required(),
			mcp.Description("Path to the application binary or bundle"),
		),
		mcp.WithArray("args",
			mcp.Description("Command-line arguments"),
		),
	), func(ctx context.Context, args map[string]any) (any, error) {
		id, err := mgr.Launch(ctx, str(args, "app_path"), strSlice(args, "args"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"process_id": id, "status": "launched"}, nil
	})

	t.register(mcp.NewTool(
		"stop_app",
		mcp.WithDescription("Terminate a launched application and stop tracking it"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier returned by launch_app"),
		),
	), func(ctx context.Context, args map[string]any) (any, error) {
		if err := mgr.Stop(ctx, str(args, "process_id")); err != nil {
			return nil, err
		}
		return map[string]any{"status": "stopped"}, nil
	})

	t.register(mcp.NewTool(
		"get_app_logs",
		mcp.WithDescription("Drain buffered stdout/stderr lines from a tracked application (destructive read)"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
		mcp.WithNumber("lines",
			mcp.Description("Return at most the N most recent lines"),
		),
	), func(ctx context.Context, args map[string]any) (any, error) {
		logs, dropped, err := mgr.Logs(str(args, "process_id"), intVal(args, "lines"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"logs": logs, "dropped": dropped}, nil
	})

	t.register(mcp.NewTool(
		"monitor_resources",
		mcp.WithDescription("Report a point-in-time CPU/memory/disk snapshot for a tracked application"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
	), func(ctx context.Context, args map[string]any) (any, error) {
		return mgr.MonitorResources(ctx, str(args, "process_id"))
	})

	t.register(mcp.NewTool(
		"find_running_apps",
		mcp.WithDescription("Scan the OS process table for running desktop applications (best effort)"),
	), func(ctx context.Context, args map[string]any) (any, error) {
		apps, err := mgr.FindRunningApps(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"apps": apps}, nil
	})

	t.register(mcp.NewTool(
		"attach_to_app",
		mcp.WithDescription("Track an externally-started process by pid without taking ownership of its streams"),
		mcp.WithNumber("pid",
			mcp.Required(),
			mcp.Description("OS process id to attach to"),
		),
	), func(ctx context.Context, args map[string]any) (any, error) {
		pid := intVal(args, "pid")
		id, err := mgr.Attach(ctx, pid)
		if err != nil {
			return nil, err
		}
		return map[string]any{"process_id": id, "status": "attached", "pid": pid}, nil
	})

	// External capabilities: the table only validates argument presence and
	// relays the result or error.
	registerCapabilityTools(t, caps)

	return t
}

func registerCapabilityTools(t *ToolTable, caps *CapabilitySet) {
	capTool := func(def mcp.Tool) {
		name := def.Name
		t.register(def, func(ctx context.Context, args map[string]any) (any, error) {
			return caps.Invoke(ctx, name, str(args, "process_id"), args)
		})
	}

	capTool(mcp.NewTool(
		"take_screenshot",
		mcp.WithDescription("Capture the screen showing the application window"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
		mcp.WithString("output_path",
			mcp.Description("File to write the PNG to; omitted means an inline data URL is returned"),
		),
	))

	capTool(mcp.NewTool(
		"get_window_info",
		mcp.WithDescription("Report window geometry and state for a tracked application"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
	))

	capTool(mcp.NewTool(
		"send_keyboard_input",
		mcp.WithDescription("Send synthetic keyboard input (text or cmd+/ctrl+ combos)"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
		mcp.WithString("keys",
			mcp.Required(),
			mcp.Description("Text to type, or a modifier combination like ctrl+s"),
		),
	))

	capTool(mcp.NewTool(
		"send_mouse_click",
		mcp.WithDescription("Send a synthetic mouse click at screen coordinates"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
		mcp.WithNumber("x",
			mcp.Required(),
			mcp.Description("Screen X coordinate"),
		),
		mcp.WithNumber("y",
			mcp.Required(),
			mcp.Description("Screen Y coordinate"),
		),
		mcp.WithString("button",
			mcp.Description("Mouse button"),
			mcp.Enum("left", "right", "middle"),
		),
	))

	capTool(mcp.NewTool(
		"execute_js",
		mcp.WithDescription("Resolve a DevTools page target for executing JavaScript in the app webview"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
		mcp.WithString("javascript_code",
			mcp.Required(),
			mcp.Description("JavaScript to execute"),
		),
	))

	capTool(mcp.NewTool(
		"get_devtools_info",
		mcp.WithDescription("Probe for the application's DevTools debug port and report version info"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
	))

	capTool(mcp.NewTool(
		"list_ipc_handlers",
		mcp.WithDescription("List IPC command handlers known for the application"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
	))

	capTool(mcp.NewTool(
		"call_ipc_command",
		mcp.WithDescription("Invoke a named IPC command against the application"),
		mcp.WithString("process_id",
			mcp.Required(),
			mcp.Description("Process identifier"),
		),
		mcp.WithString("command_name",
			mcp.Required(),
			mcp.Description("IPC command to invoke"),
		),
		mcp.WithObject("args",
			mcp.Description("Command payload"),
		),
	))
}

// Argument extraction helpers

func str(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func strSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

func intVal(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func objMap(args map[string]any, key string) map[string]any {
	v, _ := args[key].(map[string]any)
	return v
}

func strOr(args map[string]any, key, fallback string) string {
	if v := str(args, key); v != "" {
		return v
	}
	return fallback
}
