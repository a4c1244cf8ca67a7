package wavdump

import (
	"log/slog"
	"os"
	"testing"

	"github.com/go-audio/wav"
)

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, 16000, slog.Default())

	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = 0.5
	}

	path, err := w.Save(7, samples)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open saved file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode saved file: %v", err)
	}

	if got := len(buf.Data); got != 1600 {
		t.Errorf("decoded %d samples, want 1600", got)
	}
	if dec.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("channels = %d, want 1", dec.NumChans)
	}
}

func TestToPCM16Clips(t *testing.T) {
	out := toPCM16([]float32{2, -2, 0, 1})
	want := []int{32767, -32767, 0, 32767}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("toPCM16()[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
