// Package hotkey runs the global keyboard hook with gohook and feeds raw
// press/release events to the key tracker. The hook serializes its
// callbacks, so the tracker needs no locking.
package hotkey

import (
	"log/slog"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	"holdscribe/internal/keytrack"
)

// Listener owns the global hook for the process lifetime.
type Listener struct {
	tracker *keytrack.Tracker
	log     *slog.Logger
	once    sync.Once
}

// NewListener creates a Listener feeding the given tracker.
func NewListener(tracker *keytrack.Tracker, log *slog.Logger) *Listener {
	return &Listener{tracker: tracker, log: log}
}

// Run installs the hook and blocks consuming key events until the tracker
// reports the exit combination or Stop is called. Run it from the main
// goroutine.
func (l *Listener) Run() {
	events := hook.Start()
	defer l.Stop()

	for ev := range events {
		switch ev.Kind {
		case hook.KeyDown:
			if l.tracker.OnPress(KeyName(ev)) {
				l.log.Info("exit combination pressed, stopping key hook")
				return
			}
		case hook.KeyUp:
			l.tracker.OnRelease(KeyName(ev))
		}
	}
}

// Stop tears the hook down; Run's event channel drains and Run returns.
// Safe to call multiple times and from other goroutines.
func (l *Listener) Stop() {
	l.once.Do(hook.End)
}

// KeyName maps a hook event to a lowercase logical key name ("ctrl",
// "lshift", "esc", "a"). Modifiers only carry a usable Rawcode; printable
// keys fall back to the character itself. Unmappable events name as "".
func KeyName(ev hook.Event) string {
	if name := normalizeName(hook.RawcodetoKeychar(ev.Rawcode)); name != "" {
		return name
	}
	if ev.Keychar != 0 && ev.Keychar != 0xFFFF {
		return normalizeName(string(ev.Keychar))
	}
	return ""
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
