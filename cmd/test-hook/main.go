// Command test-hook is a manual test for the key tracker. It prints every
// chord transition; hold Ctrl+Shift to see engage/release, press Esc to
// exit.
//
// Usage:
//
//	go run ./cmd/test-hook
package main

import (
	"fmt"
	"log/slog"

	"holdscribe/internal/config"
	"holdscribe/internal/hotkey"
	"holdscribe/internal/keytrack"
)

type printer struct{}

func (printer) OnHotkeyEngaged()  { fmt.Println(">>> ENGAGED (would start recording)") }
func (printer) OnHotkeyReleased() { fmt.Println("<<< RELEASED (would stop and transcribe)") }

func main() {
	cfg := config.Default()
	fmt.Printf("Hold %v + %v, press %q to exit.\n",
		cfg.Hotkey.Primary, cfg.Hotkey.Secondary, cfg.Hotkey.Exit.Key)

	tracker := keytrack.New(keytrack.Config{
		Primary:            cfg.Hotkey.Primary,
		Secondary:          cfg.Hotkey.Secondary,
		ExitKey:            cfg.Hotkey.Exit.Key,
		ExitRequiresHotkey: cfg.Hotkey.Exit.RequireHotkey,
	}, printer{})

	hotkey.NewListener(tracker, slog.Default()).Run()
	fmt.Println("Done.")
}
