// Package audio owns the live microphone stream: opening it, collecting
// sample chunks while a recording is active, and reopening it after the
// device reports a fatal fault (sleep/wake, USB device unplugged).
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStreamFaulted reports that the capture stream is down and could not
// be brought back.
var ErrStreamFaulted = errors.New("audio: capture stream faulted")

// Config is the fixed capture configuration.
type Config struct {
	SampleRate uint32
	Channels   uint32
}

// Stream is one live capture handle.
type Stream interface {
	Start() error
	IsStarted() bool
	// Uninit stops and releases the handle. Safe to call more than once.
	Uninit()
}

// Opener opens capture streams. onChunk receives each delivered chunk as
// float32 samples; onStop fires when the device stops on its own, which is
// how a vanished device announces itself.
type Opener interface {
	Open(cfg Config, onChunk func([]float32), onStop func()) (Stream, error)
}

// Manager owns at most one Stream and the chunk buffer of the recording in
// progress. Chunks arrive on the device callback goroutine; everything else
// runs on the key-hook goroutine. One mutex guards the shared state and is
// held only for the buffer append or a flag flip, never for device calls.
type Manager struct {
	cfg    Config
	opener Opener
	log    *slog.Logger

	mu        sync.Mutex
	stream    Stream
	healthy   bool
	capturing bool
	chunks    [][]float32
	gen       uint64 // generation of the current stream; stale callbacks are ignored
}

// NewManager creates a Manager. Call Recover to open the first stream.
func NewManager(cfg Config, opener Opener, log *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		opener: opener,
		log:    log,
	}
}

// Ready reports whether a healthy, started stream is in place.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil && m.healthy && m.stream.IsStarted()
}

// Recover replaces the stream wholesale: the old handle, if any, is closed
// and a fresh one is opened with the same configuration. It never reuses a
// faulted handle. On failure the manager stays faulted and the error is
// returned for the caller to report.
func (m *Manager) Recover() error {
	m.mu.Lock()
	old := m.stream
	m.stream = nil
	m.healthy = false
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	if old != nil {
		old.Uninit()
	}

	stream, err := m.opener.Open(m.cfg,
		func(samples []float32) { m.deliver(gen, samples) },
		func() { m.fault(gen) },
	)
	if err != nil {
		return fmt.Errorf("audio: open capture stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Uninit()
		return fmt.Errorf("audio: start capture stream: %w", err)
	}

	m.mu.Lock()
	m.stream = stream
	m.healthy = true
	m.mu.Unlock()

	m.log.Info("capture stream opened",
		"sample_rate", m.cfg.SampleRate, "channels", m.cfg.Channels)
	return nil
}

// BeginCapture starts buffering incoming chunks into a fresh buffer.
func (m *Manager) BeginCapture() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.capturing = true
}

// EndCapture stops buffering and detaches the collected chunks. The
// returned slice is owned by the caller; the next recording starts from an
// empty buffer, so a sealed recording can never gain more samples.
func (m *Manager) EndCapture() [][]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunks := m.chunks
	m.chunks = nil
	m.capturing = false
	return chunks
}

// Close releases the stream.
func (m *Manager) Close() {
	m.mu.Lock()
	stream := m.stream
	m.stream = nil
	m.healthy = false
	m.capturing = false
	m.gen++
	m.mu.Unlock()

	if stream != nil {
		stream.Uninit()
	}
}

// deliver appends a chunk from the device callback. Chunks from a replaced
// or faulted stream are dropped; only the newest healthy stream feeds the
// buffer.
func (m *Manager) deliver(gen uint64, samples []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || !m.healthy {
		return
	}
	if !m.capturing {
		return
	}
	m.chunks = append(m.chunks, samples)
}

// fault marks the stream faulted after the device stopped on its own. No
// further chunks are accepted until Recover succeeds.
func (m *Manager) fault(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || !m.healthy {
		m.mu.Unlock()
		return
	}
	m.healthy = false
	m.mu.Unlock()

	m.log.Warn("capture stream faulted, will reopen before the next recording")
}
