// Package keytrack derives push-to-talk signals from raw key press and
// release events. It keeps the set of currently held keys and tells its
// handler when the recording chord is engaged or released, and tells the
// caller when the exit combination was pressed.
package keytrack

// Handler receives chord transitions. Both callbacks run synchronously on
// the key-hook goroutine and must return quickly.
type Handler interface {
	// OnHotkeyEngaged fires when both halves of the chord become held.
	OnHotkeyEngaged()
	// OnHotkeyReleased fires when a held chord is broken.
	OnHotkeyReleased()
}

// Config selects the recognized key names. Key names are the lowercase
// identifiers produced by the key hook ("ctrl", "lshift", "esc", ...).
type Config struct {
	// Primary and Secondary are the accepted names for each half of the
	// chord. Listing "ctrl", "lctrl" and "rctrl" makes any Ctrl count.
	Primary   []string
	Secondary []string
	// ExitKey quits the listener. With ExitRequiresHotkey it only quits
	// while the chord is held.
	ExitKey            string
	ExitRequiresHotkey bool
}

// Tracker tracks held keys and derives chord state. It is not safe for
// concurrent use; the key hook delivers events one at a time.
type Tracker struct {
	handler   Handler
	primary   map[string]struct{}
	secondary map[string]struct{}

	exitKey            string
	exitRequiresHotkey bool

	held    map[string]struct{}
	engaged bool
	stopped bool
}

// New creates a Tracker for the given chord configuration.
func New(cfg Config, handler Handler) *Tracker {
	return &Tracker{
		handler:            handler,
		primary:            nameSet(cfg.Primary),
		secondary:          nameSet(cfg.Secondary),
		exitKey:            cfg.ExitKey,
		exitRequiresHotkey: cfg.ExitRequiresHotkey,
		held:               make(map[string]struct{}),
	}
}

// OnPress records a key press. It returns true when the exit combination
// was pressed, which means the caller should stop listening for events.
// The stop signal fires at most once; a recording in progress is released
// before it fires so no session is left open.
func (t *Tracker) OnPress(key string) bool {
	if key == "" {
		return false
	}
	t.held[key] = struct{}{}

	if t.chordHeld() && !t.engaged {
		t.engaged = true
		t.handler.OnHotkeyEngaged()
	}

	if key == t.exitKey && !t.stopped && (!t.exitRequiresHotkey || t.engaged) {
		t.stopped = true
		if t.engaged {
			t.engaged = false
			t.handler.OnHotkeyReleased()
		}
		return true
	}

	return false
}

// OnRelease records a key release. Releasing either half of an engaged
// chord releases the chord, even if another key of the same half is still
// held; the chord re-engages on the next press.
func (t *Tracker) OnRelease(key string) {
	if key == "" {
		return
	}

	if t.engaged && (t.member(t.primary, key) || t.member(t.secondary, key)) {
		t.engaged = false
		t.handler.OnHotkeyReleased()
	}

	delete(t.held, key)
}

// Engaged reports whether the chord is currently engaged.
func (t *Tracker) Engaged() bool {
	return t.engaged
}

func (t *Tracker) chordHeld() bool {
	return t.anyHeld(t.primary) && t.anyHeld(t.secondary)
}

func (t *Tracker) anyHeld(names map[string]struct{}) bool {
	for name := range names {
		if _, ok := t.held[name]; ok {
			return true
		}
	}
	return false
}

func (t *Tracker) member(names map[string]struct{}, key string) bool {
	_, ok := names[key]
	return ok
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
