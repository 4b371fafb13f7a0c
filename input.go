package main

import (
	"context"
	"fmt"
	"strings"
)

// keyboardInput types text or fires a modifier combination. A "+" with a
// known modifier prefix means a combo (ctrl+s, cmd+shift+r); anything else is
// typed literally.
func (c *CapabilitySet) keyboardInput(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	keys := str(args, "keys")
	if keys == "" {
		return nil, invalidParamsf("keys must not be empty")
	}

	var err error
	if isKeyCombo(keys) {
		err = c.platform.KeyCombo(ctx, keys)
	} else {
		err = c.platform.TypeText(ctx, keys)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to send keyboard input: %w", err)
	}
	return map[string]any{"status": "sent", "keys": keys}, nil
}

func isKeyCombo(keys string) bool {
	head, _, found := strings.Cut(keys, "+")
	if !found {
		return false
	}
	switch strings.ToLower(head) {
	case "cmd", "command", "ctrl", "control", "alt", "option", "shift", "super", "meta":
		return true
	}
	return false
}

// mouseClick clicks at absolute screen coordinates. Button defaults to left.
func (c *CapabilitySet) mouseClick(ctx context.Context, record *ProcessRecord, args map[string]any) (any, error) {
	x := intVal(args, "x")
	y := intVal(args, "y")
	button := strOr(args, "button", "left")
	switch button {
	case "left", "right", "middle":
	default:
		return nil, invalidParamsf("invalid button: %s (expected left, right or middle)", button)
	}

	if err := c.platform.MouseClick(ctx, x, y, button); err != nil {
		return nil, fmt.Errorf("failed to send mouse click: %w", err)
	}
	return map[string]any{"status": "clicked", "x": x, "y": y, "button": button}, nil
}
