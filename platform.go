package main

import "context"

// platformAdapter wraps the OS-native tooling used for screen capture and
// synthetic input. Each OS provides newPlatform() behind a build tag.
type platformAdapter interface {
	Name() string
	Screenshot(ctx context.Context, outputPath string) error
	TypeText(ctx context.Context, text string) error
	KeyCombo(ctx context.Context, combo string) error
	MouseClick(ctx context.Context, x, y int, button string) error
}
