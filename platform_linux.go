//go:build linux

package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type linuxPlatform struct{}

func newPlatform() platformAdapter {
	return linuxPlatform{}
}

func (linuxPlatform) Name() string { return "linux" }

func (linuxPlatform) Screenshot(ctx context.Context, outputPath string) error {
	// ImageMagick's import grabs the root window; gnome-screenshot is the
	// fallback on desktops without it.
	if _, err := exec.LookPath("import"); err == nil {
		return exec.CommandContext(ctx, "import", "-window", "root", outputPath).Run()
	}
	if _, err := exec.LookPath("gnome-screenshot"); err == nil {
		return exec.CommandContext(ctx, "gnome-screenshot", "-f", outputPath).Run()
	}
	return fmt.Errorf("no screenshot tool available (need import or gnome-screenshot)")
}

func (linuxPlatform) TypeText(ctx context.Context, text string) error {
	return exec.CommandContext(ctx, "xdotool", "type", "--clearmodifiers", text).Run()
}

func (linuxPlatform) KeyCombo(ctx context.Context, combo string) error {
	parts := strings.Split(strings.ToLower(combo), "+")
	if len(parts) < 2 {
		return fmt.Errorf("invalid key combo: %s", combo)
	}

	// xdotool takes modifier+key syntax directly; macOS-style cmd maps to ctrl.
	mapped := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "cmd", "command", "super", "meta":
			mapped = append(mapped, "ctrl")
		case "option":
			mapped = append(mapped, "alt")
		default:
			mapped = append(mapped, part)
		}
	}
	return exec.CommandContext(ctx, "xdotool", "key", "--clearmodifiers", strings.Join(mapped, "+")).Run()
}

func (linuxPlatform) MouseClick(ctx context.Context, x, y int, button string) error {
	buttonNum := "1"
	switch button {
	case "middle":
		buttonNum = "2"
	case "right":
		buttonNum = "3"
	}
	if err := exec.CommandContext(ctx, "xdotool", "mousemove", fmt.Sprint(x), fmt.Sprint(y)).Run(); err != nil {
		return err
	}
	return exec.CommandContext(ctx, "xdotool", "click", buttonNum).Run()
}
