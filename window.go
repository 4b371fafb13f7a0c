package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// takeScreenshot captures the screen through the platform adapter. With an
// output_path the PNG lands there and the path is echoed back; without one
// the capture goes to a temp file and comes back inline as a data URL.
func (c *CapabilitySet) takeScreenshot(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	outputPath := str(args, "output_path")
	if outputPath != "" {
		if err := c.platform.Screenshot(ctx, outputPath); err != nil {
			return nil, fmt.Errorf("failed to capture screenshot: %w", err)
		}
		return map[string]any{"screenshot": outputPath}, nil
	}

	tmp, err := os.CreateTemp("", "tauripilot-shot-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.platform.Screenshot(ctx, tmpPath); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return map[string]any{"screenshot": "data:image/png;base64," + encoded}, nil
}

// windowInfo reports what is known about the application window. Geometry is
// a fixed default until per-platform window enumeration lands; title falls
// back to the binary name.
func (c *CapabilitySet) windowInfo(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	title := serverName
	if record.Path != "" {
		title = filepath.Base(record.Path)
	}
	return map[string]any{
		"title":    title,
		"pid":      record.PID,
		"platform": c.platform.Name(),
		"x":        100,
		"y":        100,
		"width":    800,
		"height":   600,
	}, nil
}
