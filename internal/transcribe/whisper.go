package transcribe

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperEngine wraps a whisper.cpp model. The model loads once at
// startup; each Transcribe call gets its own decoding context. Decoding is
// tuned for latency: beam size 1 and a fixed target language, no
// autodetection pass.
type WhisperEngine struct {
	model    whisper.Model
	language string
}

// NewWhisperEngine loads a whisper model from the given path.
// The caller must call Close() when done.
func NewWhisperEngine(modelPath, language string) (*WhisperEngine, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: %w", modelPath, err)
	}
	return &WhisperEngine{model: model, language: language}, nil
}

// Close releases the whisper model resources.
func (e *WhisperEngine) Close() error {
	if e.model != nil {
		return e.model.Close()
	}
	return nil
}

// Transcribe runs one recognition pass. The segment iterator the bindings
// expose is single-pass; it is consumed here exactly once and the joined
// text is all that leaves this function.
func (e *WhisperEngine) Transcribe(samples []float32) (string, error) {
	ctx, err := e.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("transcribe: create context: %w", err)
	}

	ctx.SetTranslate(false)
	ctx.SetThreads(uint(runtime.NumCPU()))
	ctx.SetBeamSize(1)
	if e.language != "" {
		if err := ctx.SetLanguage(e.language); err != nil {
			return "", fmt.Errorf("transcribe: set language %q: %w", e.language, err)
		}
	}

	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("transcribe: process: %w", err)
	}

	var segments []string
	for {
		seg, err := ctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("transcribe: next segment: %w", err)
		}
		segments = append(segments, seg.Text)
	}

	return strings.TrimSpace(strings.Join(segments, " ")), nil
}
