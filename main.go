package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tidwall/jsonc"
)

// Version can be set at build time using -ldflags "-X main.version=x.x.x"
var version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Print version and exit")
		configPath  = flag.String("config", "tauripilot.toml", "Path to the TOML configuration file")
		logLevel    = flag.String("log-level", "info", "Minimum log level (debug, info, warn, error)")
		callTool    = flag.String("call", "", "Run a single tool call and exit instead of serving")
		callArgs    = flag.String("args", "{}", "JSON (or JSONC) arguments for -call")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", serverName, version)
		return
	}

	SetLogLevel(ParseLogLevel(*logLevel))

	config := NewConfigStore(*configPath)
	if err := config.Load(); err != nil {
		LogError("Config", "Startup load failed", err.Error())
		os.Exit(1)
	}
	if err := config.Watch(); err != nil {
		LogWarn("Config", "Hot reload unavailable", err.Error())
	}
	defer config.Close()

	mgr := NewProcessManager()
	caps := NewCapabilitySet(mgr)
	tools := NewToolTable(mgr, caps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *callTool != "" {
		os.Exit(runSingleShot(ctx, tools, *callTool, *callArgs))
	}

	if config.Current().AutoDiscover {
		if apps, err := mgr.FindRunningApps(ctx); err == nil {
			LogInfo("Discovery", "Startup scan", fmt.Sprintf("Found %d running app(s)", len(apps)))
		}
	}

	// Tracked processes must not outlive the server on signal-driven exits.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		LogInfo("Server", "Signal received", sig.String())
		cancel()
		mgr.StopAll()
		os.Exit(0)
	}()

	LogInfo("Server", "Starting", fmt.Sprintf("%s %s on stdio", serverName, version))

	session := NewSession(os.Stdin, os.Stdout, tools)
	if err := session.Run(ctx); err != nil {
		LogError("Server", "Session ended with error", err.Error())
		mgr.StopAll()
		os.Exit(1)
	}

	LogInfo("Server", "Input stream closed, shutting down")
	mgr.StopAll()
}

// runSingleShot executes one tool call outside the protocol loop. The result
// goes to stdout as plain JSON; failures go to stderr with a non-zero exit.
func runSingleShot(ctx context.Context, tools *ToolTable, name, rawArgs string) int {
	var args map[string]any
	if err := json.Unmarshal(jsonc.ToJSON([]byte(rawArgs)), &args); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -args: %v\n", err)
		return 1
	}

	result, err := tools.Call(ctx, name, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", name, err)
		return 1
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		return 1
	}
	fmt.Println(string(payload))
	return 0
}
