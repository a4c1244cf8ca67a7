// Package dispatch takes sealed recordings from the controller and turns
// them into pasted text. Each recording is processed on its own goroutine
// so transcription never blocks the hotkey; concurrent dispatches are rare
// but safe, since every session owns its detached buffer.
package dispatch

import (
	"log/slog"
	"sync"
	"time"

	"holdscribe/internal/audio"
	"holdscribe/internal/controller"
	"holdscribe/internal/transcribe"
)

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(text string) error
}

// Paster sends the platform paste shortcut to the focused application.
type Paster interface {
	SendPasteShortcut() error
}

// Notifier reports each dispatch outcome to the operator.
type Notifier interface {
	EmptyCapture()
	NoSpeech()
	Transcribed(text string)
	TranscribeFailed(err error)
	ClipboardFailed(err error)
	PasteFailed(err error)
}

// Archiver saves a recording's samples for later inspection.
type Archiver interface {
	Save(sessionID uint64, samples []float32) (string, error)
}

// Options configures a Dispatcher. Archive may be nil.
type Options struct {
	Engine    transcribe.Engine
	Clipboard Clipboard
	Paster    Paster
	Notifier  Notifier
	Archive   Archiver
	Log       *slog.Logger

	SampleRate int
	Channels   int
	// MinDuration drops recordings too short to transcribe.
	MinDuration time.Duration
	// SilenceThresholdDBFS gates obviously silent recordings away from
	// the engine.
	SilenceThresholdDBFS float64
	// SettleDelay is the pause between the clipboard write and the paste
	// shortcut.
	SettleDelay time.Duration
}

// Dispatcher processes sealed sessions asynchronously.
type Dispatcher struct {
	opts Options
	wg   sync.WaitGroup
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	return &Dispatcher{opts: opts}
}

// Dispatch submits a sealed session for processing and returns
// immediately.
func (d *Dispatcher) Dispatch(sess *controller.Session) {
	d.wg.Add(1)
	go d.run(sess)
}

// Wait blocks until all in-flight dispatches have finished. Called during
// shutdown so a transcription in progress can complete.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(sess *controller.Session) {
	defer d.wg.Done()
	defer func() {
		// A panic in the engine or a collaborator must not take the
		// process down; the session is simply discarded.
		if r := recover(); r != nil {
			d.opts.Log.Error("dispatch panicked, session discarded",
				"session", sess.ID, "panic", r)
		}
	}()

	log := d.opts.Log.With("session", sess.ID)

	if len(sess.Chunks) == 0 {
		d.opts.Notifier.EmptyCapture()
		return
	}

	samples := flatten(sess.Chunks, d.opts.Channels)

	duration := time.Duration(len(samples)) * time.Second / time.Duration(d.opts.SampleRate)
	if duration < d.opts.MinDuration {
		log.Info("recording too short, skipping", "duration", duration.Round(time.Millisecond))
		d.opts.Notifier.EmptyCapture()
		return
	}

	if silent, metrics := audio.IsSilent(samples, d.opts.SilenceThresholdDBFS); silent {
		log.Info("recording is silent, skipping",
			"rms_dbfs", metrics.RMSdBFS, "peak_dbfs", metrics.PeakdBFS)
		d.opts.Notifier.NoSpeech()
		return
	}

	if d.opts.Archive != nil {
		if _, err := d.opts.Archive.Save(sess.ID, samples); err != nil {
			log.Warn("archiving recording failed", "error", err)
		}
	}

	start := time.Now()
	text, err := d.opts.Engine.Transcribe(samples)
	if err != nil {
		d.opts.Notifier.TranscribeFailed(err)
		return
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	if text == "" {
		log.Info("engine returned no text", "took", elapsed)
		d.opts.Notifier.NoSpeech()
		return
	}

	log.Info("transcribed", "took", elapsed, "chars", len(text))

	if err := d.opts.Clipboard.SetText(text); err != nil {
		d.opts.Notifier.ClipboardFailed(err)
		return
	}

	// Let the clipboard update propagate before the paste keystroke lands.
	time.Sleep(d.opts.SettleDelay)

	if err := d.opts.Paster.SendPasteShortcut(); err != nil {
		d.opts.Notifier.PasteFailed(err)
		return
	}

	d.opts.Notifier.Transcribed(text)
}

// flatten concatenates the chunk sequence into one contiguous buffer and
// downmixes interleaved multi-channel audio to mono by averaging.
func flatten(chunks [][]float32, channels int) []float32 {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	joined := make([]float32, 0, total)
	for _, c := range chunks {
		joined = append(joined, c...)
	}

	if channels <= 1 {
		return joined
	}

	mono := make([]float32, 0, len(joined)/channels)
	for i := 0; i+channels <= len(joined); i += channels {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += joined[i+ch]
		}
		mono = append(mono, sum/float32(channels))
	}
	return mono
}
