// Package wavdump archives sealed recordings as WAV files, a debugging
// aid for tuning the silence threshold or inspecting what the engine was
// actually fed.
package wavdump

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer saves float32 sample buffers as 16-bit PCM WAV files.
type Writer struct {
	dir        string
	sampleRate int
	log        *slog.Logger
}

// New creates a Writer that saves into dir. The directory is created on
// first save.
func New(dir string, sampleRate int, log *slog.Logger) *Writer {
	return &Writer{dir: dir, sampleRate: sampleRate, log: log}
}

// Save writes one mono recording and returns the file path.
func (w *Writer) Save(sessionID uint64, samples []float32) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("wavdump: create %s: %w", w.dir, err)
	}

	name := fmt.Sprintf("session-%04d-%s.wav", sessionID, time.Now().Format("20060102-150405"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("wavdump: create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, w.sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: w.sampleRate},
		Data:           toPCM16(samples),
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return "", fmt.Errorf("wavdump: write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("wavdump: finalize %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("wavdump: close %s: %w", path, err)
	}

	w.log.Debug("recording archived", "session", sessionID, "path", path)
	return path, nil
}

// toPCM16 converts float32 samples in [-1, 1] to 16-bit PCM, clipping
// out-of-range values.
func toPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int(s * 32767)
	}
	return out
}
