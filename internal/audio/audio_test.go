package audio

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

type fakeSink struct {
	played []beep.Streamer
	opens  int
	closed bool
}

func (f *fakeSink) Play(s beep.Streamer) { f.played = append(f.played, s) }
func (f *fakeSink) Lock()                {}
func (f *fakeSink) Unlock()              {}
func (f *fakeSink) Close()               { f.closed = true }

func newContext(t *testing.T) (*Context, *fakeSink) {
	t.Helper()
	sink := &fakeSink{}
	opts := DefaultOptions()
	opts.Open = func(beep.SampleRate) (Sink, error) {
		sink.opens++
		return sink, nil
	}
	return New(opts, slog.New(slog.NewTextHandler(io.Discard, nil))), sink
}

func peak(s beep.Streamer, n int) float64 {
	buf := make([][2]float64, n)
	s.Stream(buf)
	m := 0.0
	for _, v := range buf {
		m = math.Max(m, math.Max(math.Abs(v[0]), math.Abs(v[1])))
	}
	return m
}

func TestStart_LockedBeforeGesture(t *testing.T) {
	c, sink := newContext(t)
	if err := c.Start(); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if c.IsPlaying() {
		t.Error("expected not playing while locked")
	}
	if sink.opens != 0 {
		t.Error("output opened before a gesture")
	}
	if err := c.Toggle(); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked from Toggle, got %v", err)
	}
}

func TestUnlock_OnceOnly(t *testing.T) {
	c, sink := newContext(t)
	if err := c.Unlock(); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if err := c.Unlock(); err != nil {
		t.Fatalf("second unlock failed: %v", err)
	}
	if sink.opens != 1 || len(sink.played) != 1 {
		t.Errorf("expected one open and one stream, got %d and %d", sink.opens, len(sink.played))
	}
	if !c.Unlocked() || c.IsPlaying() {
		t.Error("expected unlocked but paused")
	}
}

func TestStartStopToggle(t *testing.T) {
	c, sink := newContext(t)
	c.Unlock()
	out := sink.played[0]

	if p := peak(out, 1024); p != 0 {
		t.Errorf("expected silence while paused, got %v", p)
	}

	if err := c.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !c.IsPlaying() {
		t.Error("expected playing")
	}
	if p := peak(out, 4096); p == 0 {
		t.Error("expected sound while playing")
	}

	c.Stop()
	if c.IsPlaying() {
		t.Error("expected stopped")
	}
	if p := peak(out, 1024); p != 0 {
		t.Errorf("expected silence after stop, got %v", p)
	}

	if err := c.Toggle(); err != nil || !c.IsPlaying() {
		t.Errorf("expected toggle to start, got %v", err)
	}
	if err := c.Toggle(); err != nil || c.IsPlaying() {
		t.Errorf("expected toggle to stop, got %v", err)
	}
}

func TestClose(t *testing.T) {
	c, sink := newContext(t)
	c.Unlock()
	c.Start()
	c.Close()
	c.Close()

	if !sink.closed {
		t.Error("expected sink closed")
	}
	if c.IsPlaying() {
		t.Error("expected not playing after close")
	}
	if err := c.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := c.Unlock(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Unlock, got %v", err)
	}
}

func TestUnlock_OpenFailure(t *testing.T) {
	opts := DefaultOptions()
	opts.Open = func(beep.SampleRate) (Sink, error) { return nil, errors.New("no device") }
	c := New(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := c.Unlock(); err == nil {
		t.Fatal("expected open failure")
	}
	if c.Unlocked() {
		t.Error("expected context to stay locked")
	}
	if err := c.Start(); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

func TestUnlock_MissingTrack(t *testing.T) {
	c, sink := newContext(t)
	c.opts.Track = "/nonexistent/boot.wav"
	if err := c.Unlock(); err == nil {
		t.Fatal("expected error for missing track")
	}
	if sink.opens != 0 {
		t.Error("output opened without a stream")
	}
}

func TestPad_Bounded(t *testing.T) {
	p := NewPad(SampleRate)
	p.SetEnergy(5000)
	buf := make([][2]float64, SampleRate.N(250 * time.Millisecond))
	n, ok := p.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("expected a full buffer, got %d, %v", n, ok)
	}
	for _, v := range buf {
		if math.Abs(v[0]) > 1 || math.Abs(v[1]) > 1 {
			t.Fatalf("sample out of range: %v", v)
		}
	}
	if p.Err() != nil {
		t.Error("pad should never error")
	}
}
