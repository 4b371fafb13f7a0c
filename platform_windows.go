//go:build windows

package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type windowsPlatform struct{}

func newPlatform() platformAdapter {
	return windowsPlatform{}
}

func (windowsPlatform) Name() string { return "windows" }

func (windowsPlatform) Screenshot(ctx context.Context, outputPath string) error {
	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms,System.Drawing
$bounds = [System.Windows.Forms.SystemInformation]::VirtualScreen
$bmp = New-Object System.Drawing.Bitmap $bounds.Width, $bounds.Height
$g = [System.Drawing.Graphics]::FromImage($bmp)
$g.CopyFromScreen($bounds.Location, [System.Drawing.Point]::Empty, $bounds.Size)
$bmp.Save(%q, [System.Drawing.Imaging.ImageFormat]::Png)
$g.Dispose(); $bmp.Dispose()`, outputPath)
	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run()
}

func (windowsPlatform) TypeText(ctx context.Context, text string) error {
	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
[System.Windows.Forms.SendKeys]::SendWait(%q)`, escapeSendKeys(text))
	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run()
}

func (windowsPlatform) KeyCombo(ctx context.Context, combo string) error {
	parts := strings.Split(strings.ToLower(combo), "+")
	if len(parts) < 2 {
		return fmt.Errorf("invalid key combo: %s", combo)
	}
	key := parts[len(parts)-1]

	var prefix strings.Builder
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "cmd", "command", "ctrl", "control", "super", "meta":
			prefix.WriteString("^")
		case "alt", "option":
			prefix.WriteString("%")
		case "shift":
			prefix.WriteString("+")
		default:
			return fmt.Errorf("unknown modifier: %s", mod)
		}
	}

	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
[System.Windows.Forms.SendKeys]::SendWait(%q)`, prefix.String()+key)
	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run()
}

func (windowsPlatform) MouseClick(ctx context.Context, x, y int, button string) error {
	if button != "left" {
		return fmt.Errorf("%s click is not supported on Windows", button)
	}
	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
[System.Windows.Forms.Cursor]::Position = New-Object System.Drawing.Point(%d, %d)
Add-Type -TypeDefinition @"
using System;
using System.Runtime.InteropServices;
public class Mouse {
    [DllImport("user32.dll")]
    public static extern void mouse_event(uint dwFlags, uint dx, uint dy, uint cButtons, uint dwExtraInfo);
}
"@
[Mouse]::mouse_event(0x02, 0, 0, 0, 0)
[Mouse]::mouse_event(0x04, 0, 0, 0, 0)`, x, y)
	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Run()
}

// escapeSendKeys quotes characters SendKeys treats as control syntax.
func escapeSendKeys(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '+', '^', '%', '~', '(', ')', '{', '}', '[', ']':
			b.WriteString("{" + string(r) + "}")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
