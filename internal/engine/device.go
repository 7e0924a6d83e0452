package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// outputSink owns the platform output device and the single
// currently-appended source, mirroring rodio::Sink's shape closely enough
// for the engine's needs: append replaces whatever was playing, Stop
// silences the device, and a finished source is detected the same way the
// teacher detects end-of-track (a beep.Callback flips an atomic flag).
type outputSink struct {
	mu sync.Mutex

	vol   *volumeStreamer
	speed *speedStreamer
	tp    *tap
	ctrl  *beep.Ctrl

	done    atomic.Bool
	playing bool
}

// tapBufferSize holds twice the visualizer's 2048-sample FFT window.
const tapBufferSize = 4096

const (
	minVolume = 0.0
	maxVolume = 1.0
	minSpeed  = 0.1
	maxSpeed  = 4.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// newOutputDevice acquires the default output device at sampleRate and
// returns an outputSink ready to accept sources. Device acquisition
// failure is fatal at startup.
func newOutputDevice(sampleRate int) (*outputSink, error) {
	sr := beep.SampleRate(sampleRate)
	bufferSize := sr.N(fadeStepDuration * 2)
	if err := speaker.Init(sr, bufferSize); err != nil {
		return nil, fmt.Errorf("init output device: %w", err)
	}
	return &outputSink{}, nil
}

// streamer is satisfied by *audio.BufferedSource; kept local to avoid a
// direct package dependency cycle in this file.
type streamer interface {
	beep.Streamer
}

// Append replaces the currently playing source (if any) with src, wrapped
// in the sink's volume and speed stages, starting paused so the caller
// can set volume/perform a fade-in before Play.
func (s *outputSink) Append(src streamer) {
	speaker.Clear()

	s.mu.Lock()
	vol := 0.0
	if s.vol != nil {
		vol = s.vol.Gain()
	}
	speed := 1.0
	if s.speed != nil {
		speed = s.speed.Speed()
	}
	s.mu.Unlock()

	sp := newSpeedStreamer(src, speed)
	v := newVolumeStreamer(sp, vol)
	tp := newTap(v, tapBufferSize)
	ctrl := &beep.Ctrl{Streamer: tp, Paused: true}

	s.mu.Lock()
	s.speed = sp
	s.vol = v
	s.tp = tp
	s.ctrl = ctrl
	s.playing = false
	s.mu.Unlock()

	s.done.Store(false)
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		s.done.Store(true)
	})))
}

// Stop silences the device and forgets the current source.
func (s *outputSink) Stop() {
	speaker.Clear()
	s.mu.Lock()
	s.ctrl = nil
	s.vol = nil
	s.speed = nil
	s.tp = nil
	s.playing = false
	s.mu.Unlock()
	s.done.Store(false)
}

// Samples returns the last n mono samples captured from the active
// source, for the spectrum visualizer. Returns nil if nothing is playing.
func (s *outputSink) Samples(n int) []float64 {
	s.mu.Lock()
	tp := s.tp
	s.mu.Unlock()
	if tp == nil {
		return nil
	}
	return tp.Samples(n)
}

// Clipped reports whether the active source has produced a full-scale
// sample since the last ResetClipped.
func (s *outputSink) Clipped() bool {
	s.mu.Lock()
	tp := s.tp
	s.mu.Unlock()
	return tp != nil && tp.Clipped()
}

// ResetClipped clears the clip flag on the active source's tap, if any.
func (s *outputSink) ResetClipped() {
	s.mu.Lock()
	tp := s.tp
	s.mu.Unlock()
	if tp != nil {
		tp.ResetClipped()
	}
}

// Play resumes playback of the current source.
func (s *outputSink) Play() {
	speaker.Lock()
	defer speaker.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil {
		s.ctrl.Paused = false
		s.playing = true
	}
}

// Pause suspends playback without discarding the source.
func (s *outputSink) Pause() {
	speaker.Lock()
	defer speaker.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil {
		s.ctrl.Paused = true
	}
	s.playing = false
}

// IsPaused reports whether the current source is paused.
func (s *outputSink) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl != nil && s.ctrl.Paused
}

// Empty reports whether no source is currently appended or the appended
// source has signalled end-of-stream.
func (s *outputSink) Empty() bool {
	s.mu.Lock()
	hasCtrl := s.ctrl != nil
	s.mu.Unlock()
	return !hasCtrl || s.done.Load()
}

// SetVolume sets the linear output gain, clamped to [0,1], taking effect on
// the next Stream call.
func (s *outputSink) SetVolume(v float64) {
	v = clamp(v, minVolume, maxVolume)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vol != nil {
		s.vol.SetGain(v)
	}
}

// Volume returns the currently configured linear output gain.
func (s *outputSink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vol == nil {
		return 0
	}
	return s.vol.Gain()
}

// SetSpeed sets the playback speed multiplier, clamped to [0.1, 4.0].
func (s *outputSink) SetSpeed(v float64) {
	v = clamp(v, minSpeed, maxSpeed)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speed != nil {
		s.speed.SetSpeed(v)
	}
}

// volumeStreamer applies a linear gain to a stereo stream, matching the
// teacher's player.volumeStreamer but parameterized as a value the engine
// can update from the command loop.
type volumeStreamer struct {
	s    beep.Streamer
	mu   sync.Mutex
	gain float64
}

func newVolumeStreamer(s beep.Streamer, gain float64) *volumeStreamer {
	return &volumeStreamer{s: s, gain: gain}
}

func (v *volumeStreamer) SetGain(g float64) {
	v.mu.Lock()
	v.gain = g
	v.mu.Unlock()
}

func (v *volumeStreamer) Gain() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain
}

func (v *volumeStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := v.s.Stream(samples)
	v.mu.Lock()
	g := v.gain
	v.mu.Unlock()
	for i := 0; i < n; i++ {
		samples[i][0] *= g
		samples[i][1] *= g
	}
	return n, ok
}

func (v *volumeStreamer) Err() error { return v.s.Err() }

// speedStreamer changes playback rate (and therefore pitch) by nearest-
// neighbor resampling the underlying stream; it intentionally does not
// time-stretch. Speed is applied at the sink level and alters pitch.
type speedStreamer struct {
	s  beep.Streamer
	mu sync.Mutex

	speed float64
	acc   float64

	have    bool
	current [2]float64
}

func newSpeedStreamer(s beep.Streamer, speed float64) *speedStreamer {
	return &speedStreamer{s: s, speed: speed}
}

func (sp *speedStreamer) SetSpeed(v float64) {
	sp.mu.Lock()
	sp.speed = v
	sp.mu.Unlock()
}

func (sp *speedStreamer) Speed() float64 {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.speed
}

func (sp *speedStreamer) Stream(samples [][2]float64) (int, bool) {
	sp.mu.Lock()
	speed := sp.speed
	sp.mu.Unlock()
	if speed <= 0 {
		speed = 1
	}

	var one [1][2]float64
	for i := range samples {
		if !sp.have {
			n, ok := sp.s.Stream(one[:])
			if n == 0 || !ok {
				return i, i > 0
			}
			sp.current = one[0]
			sp.have = true
		}
		samples[i] = sp.current
		sp.acc += speed
		for sp.acc >= 1 {
			sp.acc -= 1
			n, ok := sp.s.Stream(one[:])
			if n == 0 || !ok {
				sp.have = false
				return i + 1, true
			}
			sp.current = one[0]
		}
	}
	return len(samples), true
}

func (sp *speedStreamer) Err() error { return sp.s.Err() }
