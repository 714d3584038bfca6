// Package audio plays the looping ambient track behind the portrait.
// Playback stays locked until the first user gesture unlocks it.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const (
	SampleRate    = beep.SampleRate(44100)
	DefaultVolume = 0.35
)

var (
	ErrLocked = errors.New("audio: playback blocked until a user gesture")
	ErrClosed = errors.New("audio: context closed")
)

// Sink is the output device.
type Sink interface {
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// SpeakerSink plays through the system speaker.
type SpeakerSink struct{}

func OpenSpeaker(sr beep.SampleRate) (Sink, error) {
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, err
	}
	return SpeakerSink{}, nil
}

func (SpeakerSink) Play(s beep.Streamer) { speaker.Play(s) }
func (SpeakerSink) Lock()                { speaker.Lock() }
func (SpeakerSink) Unlock()              { speaker.Unlock() }
func (SpeakerSink) Close()               { speaker.Clear() }

type Options struct {
	// Track is a WAV file to loop. Empty uses the generated pad.
	Track  string
	Volume float64
	Open   func(beep.SampleRate) (Sink, error)
}

func DefaultOptions() Options {
	return Options{Volume: DefaultVolume, Open: OpenSpeaker}
}

// Context owns one looping stream. It is created paused and locked.
type Context struct {
	mu       sync.Mutex
	opts     Options
	sink     Sink
	ctrl     *beep.Ctrl
	pad      *Pad
	track    beep.StreamSeekCloser
	unlocked bool
	playing  bool
	closed   bool
	log      *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Context {
	if opts.Open == nil {
		opts.Open = OpenSpeaker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{opts: opts, log: logger.With("component", "audio")}
}

// Unlock is the user-gesture hook. The first call opens the output and
// queues the paused loop; later calls do nothing.
func (c *Context) Unlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.unlocked {
		return nil
	}

	stream, err := c.openStream()
	if err != nil {
		return err
	}
	sink, err := c.opts.Open(SampleRate)
	if err != nil {
		if c.track != nil {
			c.track.Close()
			c.track = nil
		}
		return fmt.Errorf("open output: %w", err)
	}

	c.sink = sink
	c.ctrl = &beep.Ctrl{Streamer: stream, Paused: true}
	sink.Play(volume(c.ctrl, c.opts.Volume))
	c.unlocked = true
	c.log.Debug("audio unlocked", "track", c.opts.Track)
	return nil
}

func (c *Context) openStream() (beep.Streamer, error) {
	if c.opts.Track == "" {
		c.pad = NewPad(SampleRate)
		return c.pad, nil
	}

	f, err := os.Open(c.opts.Track)
	if err != nil {
		return nil, err
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", c.opts.Track, err)
	}
	c.track = s

	var looped beep.Streamer = beep.Loop(-1, s)
	if format.SampleRate != SampleRate {
		looped = beep.Resample(4, format.SampleRate, SampleRate, looped)
	}
	return looped, nil
}

func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// Start resumes the loop. Before Unlock it fails with ErrLocked and the
// context stays stopped.
func (c *Context) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.unlocked {
		c.playing = false
		return ErrLocked
	}
	c.setPaused(false)
	c.playing = true
	return nil
}

func (c *Context) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked || c.closed {
		return
	}
	c.setPaused(true)
	c.playing = false
}

func (c *Context) Toggle() error {
	if c.IsPlaying() {
		c.Stop()
		return nil
	}
	return c.Start()
}

func (c *Context) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Context) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

// SetEnergy forwards field motion to the generated pad, if in use.
func (c *Context) SetEnergy(e float64) {
	c.mu.Lock()
	pad := c.pad
	c.mu.Unlock()
	if pad != nil {
		pad.SetEnergy(e)
	}
}

// Close stops playback and releases the output and track.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.playing = false
	if c.sink != nil {
		c.setPaused(true)
		c.sink.Close()
	}
	if c.track != nil {
		c.track.Close()
	}
}

func (c *Context) setPaused(p bool) {
	c.sink.Lock()
	c.ctrl.Paused = p
	c.sink.Unlock()
}
