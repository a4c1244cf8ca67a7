// Package notify surfaces status to the operator through desktop
// notifications. Every message is also logged, so a failed or disabled
// notification daemon never hides an outcome.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

const appName = "holdscribe"

// Notifier sends desktop notifications. Notification errors are ignored;
// they are not worth failing over.
type Notifier struct {
	enabled bool
	log     *slog.Logger
}

// New creates a Notifier.
func New(enabled bool, log *slog.Logger) *Notifier {
	return &Notifier{enabled: enabled, log: log}
}

// Ready announces that the hotkey is live.
func (n *Notifier) Ready() {
	n.log.Info("ready, waiting for hotkey")
	n.notify("Ready", "Hold the hotkey to dictate")
}

// DeviceFault reports a capture stream that could not be recovered.
func (n *Notifier) DeviceFault(err error) {
	n.log.Error("audio device unavailable", "error", err)
	n.notify("Microphone unavailable", "Recording aborted: "+err.Error())
}

// EmptyCapture reports a recording with no usable audio in it.
func (n *Notifier) EmptyCapture() {
	n.log.Info("nothing captured")
	n.notify("Nothing captured", "No audio was recorded")
}

// NoSpeech reports a recording the engine found no words in.
func (n *Notifier) NoSpeech() {
	n.log.Info("no speech detected")
	n.notify("No speech detected", "The recording contained no recognizable speech")
}

// Transcribed reports a successful transcription.
func (n *Notifier) Transcribed(text string) {
	if len(text) > 100 {
		text = text[:100] + "..."
	}
	n.notify("Transcribed", text)
}

// TranscribeFailed reports an engine failure. The recording is discarded.
func (n *Notifier) TranscribeFailed(err error) {
	n.log.Error("transcription failed", "error", err)
	n.notify("Transcription failed", err.Error())
}

// ClipboardFailed reports that the transcribed text could not be copied.
func (n *Notifier) ClipboardFailed(err error) {
	n.log.Error("clipboard write failed", "error", err)
	n.notify("Clipboard failed", "Transcribed text could not be copied: "+err.Error())
}

// PasteFailed reports that the paste keystroke could not be sent. The text
// is still on the clipboard.
func (n *Notifier) PasteFailed(err error) {
	n.log.Warn("paste failed, text left on clipboard", "error", err)
	n.notify("Paste failed", "Text is on the clipboard - paste it manually")
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled {
		return
	}
	_ = beeep.Notify(appName+": "+title, message, "")
}
