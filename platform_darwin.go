//go:build darwin

package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type darwinPlatform struct{}

func newPlatform() platformAdapter {
	return darwinPlatform{}
}

func (darwinPlatform) Name() string { return "darwin" }

func (darwinPlatform) Screenshot(ctx context.Context, outputPath string) error {
	// -x suppresses the capture sound.
	return exec.CommandContext(ctx, "screencapture", "-x", outputPath).Run()
}

func (darwinPlatform) TypeText(ctx context.Context, text string) error {
	script := fmt.Sprintf(`tell application "System Events" to keystroke %q`, text)
	return exec.CommandContext(ctx, "osascript", "-e", script).Run()
}

func (darwinPlatform) KeyCombo(ctx context.Context, combo string) error {
	parts := strings.Split(strings.ToLower(combo), "+")
	if len(parts) < 2 {
		return fmt.Errorf("invalid key combo: %s", combo)
	}
	key := parts[len(parts)-1]

	var modifiers []string
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "cmd", "command", "super", "meta":
			modifiers = append(modifiers, "command down")
		case "ctrl", "control":
			modifiers = append(modifiers, "control down")
		case "alt", "option":
			modifiers = append(modifiers, "option down")
		case "shift":
			modifiers = append(modifiers, "shift down")
		default:
			return fmt.Errorf("unknown modifier: %s", mod)
		}
	}

	script := fmt.Sprintf(`tell application "System Events" to keystroke %q using {%s}`,
		key, strings.Join(modifiers, ", "))
	return exec.CommandContext(ctx, "osascript", "-e", script).Run()
}

func (darwinPlatform) MouseClick(ctx context.Context, x, y int, button string) error {
	var action string
	switch button {
	case "right":
		action = "rc"
	case "middle":
		return fmt.Errorf("middle click is not supported on macOS")
	default:
		action = "c"
	}
	return exec.CommandContext(ctx, "cliclick", fmt.Sprintf("%s:%d,%d", action, x, y)).Run()
}
