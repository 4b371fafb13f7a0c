package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DevTools port probing covers the range Chromium-based webviews pick their
// remote debugging port from.
const (
	devtoolsPortStart = 9222
	devtoolsPortEnd   = 9249
)

// devtoolsClient talks to a webview's remote debugging endpoint over HTTP.
type devtoolsClient struct {
	http *http.Client
}

func newDevtoolsClient() *devtoolsClient {
	return &devtoolsClient{
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// findDebugPort probes the DevTools port range on loopback and returns the
// first responding port together with its /json/version payload.
func (d *devtoolsClient) findDebugPort(ctx context.Context) (int, map[string]any, error) {
	for port := devtoolsPortStart; port <= devtoolsPortEnd; port++ {
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		default:
		}

		info, err := d.fetchJSON(ctx, port, "/json/version")
		if err != nil {
			continue
		}
		var version map[string]any
		if err := json.Unmarshal(info, &version); err != nil {
			continue
		}
		return port, version, nil
	}
	return 0, nil, fmt.Errorf("no DevTools endpoint found on ports %d-%d", devtoolsPortStart, devtoolsPortEnd)
}

func (d *devtoolsClient) fetchJSON(ctx context.Context, port int, path string) ([]byte, error) {
	url := fmt.Sprintf("http://127.0.0.1:%d%s", port, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("devtools endpoint returned %d", resp.StatusCode)
	}

	var buf json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// devtoolsInfo probes for the app's debug port and reports the endpoint plus
// its browser version payload.
func (c *CapabilitySet) devtoolsInfo(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	port, version, err := c.devtools.findDebugPort(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"debug_port":   port,
		"devtools_url": fmt.Sprintf("http://localhost:%d", port),
		"version_info": version,
	}, nil
}

// executeJS resolves the first page target on the app's DevTools endpoint.
// Actual evaluation needs the WebSocket debugger session; the caller gets the
// target it should connect to.
func (c *CapabilitySet) executeJS(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	code := str(args, "javascript_code")
	if code == "" {
		return nil, invalidParamsf("javascript_code must not be empty")
	}

	port, _, err := c.devtools.findDebugPort(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := c.devtools.fetchJSON(ctx, port, "/json/list")
	if err != nil {
		return nil, fmt.Errorf("failed to list DevTools targets: %w", err)
	}
	var targets []map[string]any
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse DevTools targets: %w", err)
	}

	var page map[string]any
	for _, t := range targets {
		if t["type"] == "page" {
			page = t
			break
		}
	}
	if page == nil && len(targets) > 0 {
		page = targets[0]
	}
	if page == nil {
		return nil, fmt.Errorf("no DevTools page target available on port %d", port)
	}

	return map[string]any{
		"status":        "target_resolved",
		"debug_port":    port,
		"page_id":       page["id"],
		"page_url":      page["url"],
		"websocket_url": page["webSocketDebuggerUrl"],
	}, nil
}
