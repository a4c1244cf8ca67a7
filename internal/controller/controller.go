// Package controller is the recording state machine. Hotkey transitions
// drive it: engage starts capture, release seals the recording and hands
// it off for transcription without waiting for the result.
package controller

import (
	"log/slog"
	"sync"
	"time"
)

// State is the controller's lifecycle state. A tagged state instead of
// loose booleans, so an impossible combination cannot be represented.
type State int

const (
	StateIdle State = iota
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	default:
		return "idle"
	}
}

// Session is one sealed recording: the chunk sequence captured between an
// engage and a release. After sealing it is immutable; the dispatcher owns
// it until transcription finishes, then it is dropped.
type Session struct {
	ID        uint64
	StartedAt time.Time
	Chunks    [][]float32
}

// SampleCount returns the total number of samples across all chunks.
func (s *Session) SampleCount() int {
	n := 0
	for _, c := range s.Chunks {
		n += len(c)
	}
	return n
}

// Stream is the slice of the audio manager the controller drives.
type Stream interface {
	Ready() bool
	Recover() error
	BeginCapture()
	EndCapture() [][]float32
}

// Dispatcher consumes sealed sessions. Dispatch must not block.
type Dispatcher interface {
	Dispatch(sess *Session)
}

// Notifier reports operator-visible failures.
type Notifier interface {
	DeviceFault(err error)
}

// Controller runs on the key-hook goroutine; the mutex only fences the
// occasional probe from another goroutine (signal handler, tests).
type Controller struct {
	stream     Stream
	dispatcher Dispatcher
	notifier   Notifier
	log        *slog.Logger

	mu      sync.Mutex
	state   State
	current *Session
	lastID  uint64
}

// New creates an idle Controller.
func New(stream Stream, dispatcher Dispatcher, notifier Notifier, log *slog.Logger) *Controller {
	return &Controller{
		stream:     stream,
		dispatcher: dispatcher,
		notifier:   notifier,
		log:        log,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnHotkeyEngaged starts a recording. A broken stream is recovered first;
// if recovery fails no session starts, so we never record into a dead
// stream and seal a recording full of nothing.
func (c *Controller) OnHotkeyEngaged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return
	}

	if !c.stream.Ready() {
		c.log.Warn("capture stream not ready, recovering before recording")
		if err := c.stream.Recover(); err != nil {
			c.log.Error("stream recovery failed, recording aborted", "error", err)
			c.notifier.DeviceFault(err)
			return
		}
	}

	c.lastID++
	c.current = &Session{ID: c.lastID, StartedAt: time.Now()}
	c.stream.BeginCapture()
	c.state = StateRecording
	c.log.Info("recording started", "session", c.current.ID)
}

// OnHotkeyReleased seals the in-progress recording and submits it for
// asynchronous transcription. The controller is back to idle before the
// dispatcher sees the session, so the next recording can start right away.
func (c *Controller) OnHotkeyReleased() {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return
	}

	sess := c.current
	c.current = nil
	sess.Chunks = c.stream.EndCapture()
	c.state = StateIdle
	c.mu.Unlock()

	c.log.Info("recording sealed",
		"session", sess.ID,
		"chunks", len(sess.Chunks),
		"samples", sess.SampleCount(),
		"held", time.Since(sess.StartedAt).Round(time.Millisecond))

	c.dispatcher.Dispatch(sess)
}
