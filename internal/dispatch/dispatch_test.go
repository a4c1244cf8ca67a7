package dispatch

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"holdscribe/internal/controller"
)

type fakeEngine struct {
	mu      sync.Mutex
	calls   int
	inputs  [][]float32
	text    string
	err     error
	panicky bool
}

func (e *fakeEngine) Transcribe(samples []float32) (string, error) {
	e.mu.Lock()
	e.calls++
	e.inputs = append(e.inputs, samples)
	e.mu.Unlock()
	if e.panicky {
		panic("engine exploded")
	}
	return e.text, e.err
}

func (e *fakeEngine) Close() error { return nil }

type fakeClipboard struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (c *fakeClipboard) SetText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, text)
	return nil
}

type fakePaster struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *fakePaster) SendPasteShortcut() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

type fakeNotifier struct {
	mu              sync.Mutex
	empty           int
	noSpeech        int
	transcribed     []string
	transcribeFails int
	clipboardFails  int
	pasteFails      int
}

func (n *fakeNotifier) EmptyCapture() { n.mu.Lock(); n.empty++; n.mu.Unlock() }
func (n *fakeNotifier) NoSpeech()     { n.mu.Lock(); n.noSpeech++; n.mu.Unlock() }
func (n *fakeNotifier) Transcribed(text string) {
	n.mu.Lock()
	n.transcribed = append(n.transcribed, text)
	n.mu.Unlock()
}
func (n *fakeNotifier) TranscribeFailed(err error) { n.mu.Lock(); n.transcribeFails++; n.mu.Unlock() }
func (n *fakeNotifier) ClipboardFailed(err error)  { n.mu.Lock(); n.clipboardFails++; n.mu.Unlock() }
func (n *fakeNotifier) PasteFailed(err error)      { n.mu.Lock(); n.pasteFails++; n.mu.Unlock() }

type fixture struct {
	engine   *fakeEngine
	clip     *fakeClipboard
	paster   *fakePaster
	notifier *fakeNotifier
	d        *Dispatcher
}

func newFixture(engine *fakeEngine) *fixture {
	f := &fixture{
		engine:   engine,
		clip:     &fakeClipboard{},
		paster:   &fakePaster{},
		notifier: &fakeNotifier{},
	}
	f.d = New(Options{
		Engine:               engine,
		Clipboard:            f.clip,
		Paster:               f.paster,
		Notifier:             f.notifier,
		Log:                  slog.Default(),
		SampleRate:           16000,
		Channels:             1,
		MinDuration:          100 * time.Millisecond,
		SilenceThresholdDBFS: -40,
		SettleDelay:          0,
	})
	return f
}

// speechChunks returns chunks loud enough to pass the silence gate, with
// seconds' worth of samples at 16kHz.
func speechChunks(seconds float64) [][]float32 {
	n := int(seconds * 16000)
	chunk := make([]float32, n)
	for i := range chunk {
		if i%2 == 0 {
			chunk[i] = 0.5
		} else {
			chunk[i] = -0.5
		}
	}
	return [][]float32{chunk}
}

func dispatchAndWait(d *Dispatcher, sess *controller.Session) {
	d.Dispatch(sess)
	d.Wait()
}

func TestEmptySessionSkipsEngine(t *testing.T) {
	f := newFixture(&fakeEngine{text: "should not run"})

	dispatchAndWait(f.d, &controller.Session{ID: 1})

	if f.engine.calls != 0 {
		t.Errorf("engine calls = %d, want 0", f.engine.calls)
	}
	if f.notifier.empty != 1 {
		t.Errorf("EmptyCapture notifications = %d, want 1", f.notifier.empty)
	}
}

func TestTooShortRecordingSkipsEngine(t *testing.T) {
	f := newFixture(&fakeEngine{text: "should not run"})

	// 50ms of audio against a 100ms minimum.
	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(0.05)})

	if f.engine.calls != 0 {
		t.Errorf("engine calls = %d, want 0", f.engine.calls)
	}
	if f.notifier.empty != 1 {
		t.Errorf("EmptyCapture notifications = %d, want 1", f.notifier.empty)
	}
}

func TestSilentRecordingSkipsEngine(t *testing.T) {
	f := newFixture(&fakeEngine{text: "should not run"})

	chunks := [][]float32{
		make([]float32, 1600),
		make([]float32, 1600),
		make([]float32, 1600),
	}
	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: chunks})

	if f.engine.calls != 0 {
		t.Errorf("engine calls = %d, want 0 (silence never reaches the engine)", f.engine.calls)
	}
	if f.notifier.noSpeech != 1 {
		t.Errorf("NoSpeech notifications = %d, want 1", f.notifier.noSpeech)
	}
	if f.notifier.transcribeFails != 0 {
		t.Errorf("TranscribeFailed notifications = %d, want 0", f.notifier.transcribeFails)
	}
}

func TestSuccessfulDispatchCopiesThenPastes(t *testing.T) {
	f := newFixture(&fakeEngine{text: "hello world"})

	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(1)})

	if len(f.clip.texts) != 1 || f.clip.texts[0] != "hello world" {
		t.Errorf("clipboard texts = %v, want [hello world]", f.clip.texts)
	}
	if f.paster.calls != 1 {
		t.Errorf("paste calls = %d, want 1", f.paster.calls)
	}
	if len(f.notifier.transcribed) != 1 {
		t.Errorf("Transcribed notifications = %d, want 1", len(f.notifier.transcribed))
	}
}

func TestEmptyTextReportsNoSpeech(t *testing.T) {
	f := newFixture(&fakeEngine{text: ""})

	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(1)})

	if f.notifier.noSpeech != 1 {
		t.Errorf("NoSpeech notifications = %d, want 1", f.notifier.noSpeech)
	}
	if len(f.clip.texts) != 0 {
		t.Errorf("clipboard texts = %v, want none", f.clip.texts)
	}
	if f.paster.calls != 0 {
		t.Errorf("paste calls = %d, want 0", f.paster.calls)
	}
}

func TestEngineErrorReportsFailure(t *testing.T) {
	f := newFixture(&fakeEngine{err: errors.New("decode failed")})

	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(1)})

	if f.notifier.transcribeFails != 1 {
		t.Errorf("TranscribeFailed notifications = %d, want 1", f.notifier.transcribeFails)
	}
	if len(f.clip.texts) != 0 {
		t.Errorf("clipboard texts = %v, want none", f.clip.texts)
	}
}

func TestClipboardErrorReported(t *testing.T) {
	f := newFixture(&fakeEngine{text: "hello"})
	f.clip.err = errors.New("no clipboard")

	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(1)})

	if f.notifier.clipboardFails != 1 {
		t.Errorf("ClipboardFailed notifications = %d, want 1", f.notifier.clipboardFails)
	}
	if f.paster.calls != 0 {
		t.Errorf("paste calls = %d, want 0 after clipboard failure", f.paster.calls)
	}
}

func TestPasteFailureLeavesClipboardIntact(t *testing.T) {
	f := newFixture(&fakeEngine{text: "hello"})
	f.paster.err = errors.New("injection blocked")

	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(1)})

	if f.notifier.pasteFails != 1 {
		t.Errorf("PasteFailed notifications = %d, want 1", f.notifier.pasteFails)
	}
	if len(f.clip.texts) != 1 || f.clip.texts[0] != "hello" {
		t.Errorf("clipboard texts = %v, want [hello] (fallback for manual paste)", f.clip.texts)
	}
}

func TestEnginePanicIsRecovered(t *testing.T) {
	f := newFixture(&fakeEngine{panicky: true})

	// Must not crash the test binary; Wait must still return.
	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(1)})

	if f.paster.calls != 0 {
		t.Errorf("paste calls = %d, want 0 after panic", f.paster.calls)
	}
}

func TestStereoDownmixAverages(t *testing.T) {
	f := newFixture(&fakeEngine{text: "ok"})
	f.d.opts.Channels = 2
	f.d.opts.MinDuration = 0

	// Interleaved stereo: L=0.8, R=0.4 -> mono 0.6.
	frames := 16000
	chunk := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		chunk[2*i] = 0.8
		chunk[2*i+1] = 0.4
	}
	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: [][]float32{chunk}})

	if f.engine.calls != 1 {
		t.Fatalf("engine calls = %d, want 1", f.engine.calls)
	}
	mono := f.engine.inputs[0]
	if len(mono) != frames {
		t.Fatalf("mono samples = %d, want %d", len(mono), frames)
	}
	if diff := mono[0] - 0.6; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("mono[0] = %v, want 0.6", mono[0])
	}
}

type fakeArchiver struct {
	mu    sync.Mutex
	saves int
}

func (a *fakeArchiver) Save(sessionID uint64, samples []float32) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saves++
	return "/tmp/fake.wav", nil
}

func TestArchiverReceivesRecording(t *testing.T) {
	f := newFixture(&fakeEngine{text: "ok"})
	arch := &fakeArchiver{}
	f.d.opts.Archive = arch

	dispatchAndWait(f.d, &controller.Session{ID: 1, Chunks: speechChunks(1)})

	if arch.saves != 1 {
		t.Errorf("archive saves = %d, want 1", arch.saves)
	}
}

func TestConcurrentDispatchesDoNotShareState(t *testing.T) {
	f := newFixture(&fakeEngine{text: "ok"})

	for i := 1; i <= 5; i++ {
		f.d.Dispatch(&controller.Session{ID: uint64(i), Chunks: speechChunks(0.5)})
	}
	f.d.Wait()

	if f.engine.calls != 5 {
		t.Errorf("engine calls = %d, want 5", f.engine.calls)
	}
	if f.paster.calls != 5 {
		t.Errorf("paste calls = %d, want 5", f.paster.calls)
	}
}
