package audio

import (
	"errors"
	"log/slog"
	"testing"
)

// fakeStream records lifecycle calls.
type fakeStream struct {
	started  bool
	uninited int
	startErr error
}

func (s *fakeStream) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *fakeStream) IsStarted() bool { return s.started }

func (s *fakeStream) Uninit() {
	s.started = false
	s.uninited++
}

// fakeOpener hands out fakeStreams and keeps the callbacks of the most
// recent open so tests can push chunks and faults.
type fakeOpener struct {
	openErr error
	opened  []*fakeStream
	onChunk func([]float32)
	onStop  func()
}

func (o *fakeOpener) Open(cfg Config, onChunk func([]float32), onStop func()) (Stream, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	s := &fakeStream{}
	o.opened = append(o.opened, s)
	o.onChunk = onChunk
	o.onStop = onStop
	return s, nil
}

func testManager(t *testing.T) (*Manager, *fakeOpener) {
	t.Helper()
	opener := &fakeOpener{}
	m := NewManager(Config{SampleRate: 16000, Channels: 1}, opener, slog.Default())
	return m, opener
}

func chunk(n int, value float32) []float32 {
	c := make([]float32, n)
	for i := range c {
		c[i] = value
	}
	return c
}

func TestNotReadyBeforeRecover(t *testing.T) {
	m, _ := testManager(t)
	if m.Ready() {
		t.Error("Ready() = true before any stream was opened")
	}
}

func TestRecoverOpensAndStarts(t *testing.T) {
	m, opener := testManager(t)

	if err := m.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if !m.Ready() {
		t.Error("Ready() = false after successful Recover()")
	}
	if len(opener.opened) != 1 {
		t.Errorf("opened %d streams, want 1", len(opener.opened))
	}
}

func TestRecoverFailureLeavesFaulted(t *testing.T) {
	m, opener := testManager(t)
	opener.openErr = errors.New("no device")

	if err := m.Recover(); err == nil {
		t.Fatal("Recover() error = nil, want error")
	}
	if m.Ready() {
		t.Error("Ready() = true after failed Recover()")
	}
}

func TestRecoverReplacesOldStream(t *testing.T) {
	m, opener := testManager(t)
	if err := m.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	first := opener.opened[0]

	if err := m.Recover(); err != nil {
		t.Fatalf("second Recover() error = %v", err)
	}
	if first.uninited == 0 {
		t.Error("old stream was not closed on recovery")
	}
	if len(opener.opened) != 2 {
		t.Errorf("opened %d streams, want 2", len(opener.opened))
	}
	if !m.Ready() {
		t.Error("Ready() = false after recovery")
	}
}

func TestChunksBufferedOnlyWhileCapturing(t *testing.T) {
	m, opener := testManager(t)
	if err := m.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	opener.onChunk(chunk(100, 0.5)) // idle, discarded

	m.BeginCapture()
	for i := 0; i < 3; i++ {
		opener.onChunk(chunk(100, 0.5))
	}
	chunks := m.EndCapture()

	opener.onChunk(chunk(100, 0.5)) // idle again, discarded

	if len(chunks) != 3 {
		t.Fatalf("captured %d chunks, want 3", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total != 300 {
		t.Errorf("captured %d samples, want 300", total)
	}
}

func TestEndCaptureDetachesBuffer(t *testing.T) {
	m, opener := testManager(t)
	if err := m.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	m.BeginCapture()
	opener.onChunk(chunk(10, 1))
	sealed := m.EndCapture()

	// A new recording must not grow or mutate the sealed one.
	m.BeginCapture()
	opener.onChunk(chunk(10, -1))
	second := m.EndCapture()

	if len(sealed) != 1 || len(second) != 1 {
		t.Fatalf("chunk counts = (%d, %d), want (1, 1)", len(sealed), len(second))
	}
	if sealed[0][0] != 1 {
		t.Errorf("sealed chunk mutated: sample = %v, want 1", sealed[0][0])
	}
}

func TestFaultDropsSubsequentChunks(t *testing.T) {
	m, opener := testManager(t)
	if err := m.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	m.BeginCapture()
	opener.onChunk(chunk(100, 0.5))
	opener.onStop() // device vanished mid-recording
	opener.onChunk(chunk(100, 0.5))

	if m.Ready() {
		t.Error("Ready() = true after device fault")
	}
	chunks := m.EndCapture()
	if len(chunks) != 1 {
		t.Errorf("captured %d chunks, want 1 (post-fault chunk dropped)", len(chunks))
	}
}

func TestStaleStreamCallbacksIgnored(t *testing.T) {
	m, opener := testManager(t)
	if err := m.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	staleChunk := opener.onChunk
	staleStop := opener.onStop

	if err := m.Recover(); err != nil {
		t.Fatalf("second Recover() error = %v", err)
	}

	m.BeginCapture()
	staleChunk(chunk(100, 0.5)) // from the replaced stream
	staleStop()                 // its uninit-triggered stop must not fault the new stream

	if !m.Ready() {
		t.Error("Ready() = false after stale stop callback")
	}
	if chunks := m.EndCapture(); len(chunks) != 0 {
		t.Errorf("captured %d stale chunks, want 0", len(chunks))
	}
}

func TestCloseReleasesStream(t *testing.T) {
	m, opener := testManager(t)
	if err := m.Recover(); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	m.Close()
	if m.Ready() {
		t.Error("Ready() = true after Close()")
	}
	if opener.opened[0].uninited == 0 {
		t.Error("stream not released on Close()")
	}

	// Close with no stream is a no-op.
	m.Close()
}

func TestBytesToFloat32(t *testing.T) {
	// 1.0 = 0x3F800000, -1.0 = 0xBF800000 in little-endian float32
	data := []byte{
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x80, 0xBF,
	}
	samples := bytesToFloat32(data, 2)

	if len(samples) != 2 {
		t.Fatalf("bytesToFloat32() returned %d samples, want 2", len(samples))
	}
	if samples[0] != 1.0 {
		t.Errorf("samples[0] = %f, want 1.0", samples[0])
	}
	if samples[1] != -1.0 {
		t.Errorf("samples[1] = %f, want -1.0", samples[1])
	}
}

func TestBytesToFloat32Truncated(t *testing.T) {
	// Sample count larger than the data: conversion stops at the end.
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	samples := bytesToFloat32(data, 2)
	if len(samples) != 1 {
		t.Errorf("bytesToFloat32() returned %d samples, want 1", len(samples))
	}
}
