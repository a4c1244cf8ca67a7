package transcribe

import (
	"os"
	"path/filepath"
	"testing"
)

// whisperModelPath resolves the path to the whisper model relative to the
// project root. Tests that need the model are skipped when it is absent.
func whisperModelPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join("..", "..", "models", "ggml-base.en.bin")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("model not found at %s (run 'make model' first): %v", path, err)
	}
	return path
}

func TestNewWhisperEngine(t *testing.T) {
	path := whisperModelPath(t)

	e, err := NewWhisperEngine(path, "en")
	if err != nil {
		t.Fatalf("NewWhisperEngine(%q) returned error: %v", path, err)
	}
	if e == nil {
		t.Fatal("NewWhisperEngine returned nil without error")
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}
}

func TestNewWhisperEngineBadPath(t *testing.T) {
	_, err := NewWhisperEngine("/nonexistent/model.bin", "en")
	if err == nil {
		t.Fatal("NewWhisperEngine with bad path should return error")
	}
}

func TestTranscribeSilence(t *testing.T) {
	path := whisperModelPath(t)

	e, err := NewWhisperEngine(path, "en")
	if err != nil {
		t.Fatalf("NewWhisperEngine(%q) returned error: %v", path, err)
	}
	defer e.Close()

	// One second of digital silence should produce no usable text, and
	// must not produce an error.
	text, err := e.Transcribe(make([]float32, 16000))
	if err != nil {
		t.Fatalf("Transcribe(silence) returned error: %v", err)
	}
	t.Logf("silence transcription: %q", text)
}
