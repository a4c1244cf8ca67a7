// Package transcribe wraps the speech-to-text engine. The engine is
// opaque to the rest of the program: mono 16kHz float32 samples in, text
// out.
package transcribe

// Engine converts audio samples to text.
type Engine interface {
	// Transcribe recognizes speech in mono 16kHz float32 samples. An empty
	// string with a nil error means no speech was found.
	Transcribe(samples []float32) (string, error)
	// Close releases engine resources.
	Close() error
}
