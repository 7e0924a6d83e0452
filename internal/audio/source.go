package audio

import "audido/internal/dsp"

// Chunk is the fixed-size slice of interleaved samples processed end to
// end through DSP before the source yields samples to the device.
const Chunk = 512

// BufferedSource is the audio iterator the output device drives. It reads
// from a shared, read-only sample buffer, applies the EQ in bounded-size
// chunks, and drains a single-consumer realtime command channel. It must
// never block, allocate, or take a mutex on its per-sample hot path
// (refill/EQ processing on a non-structural command is the only
// documented exception: structural EQ edits are accepted as
// potentially-allocating, user-initiated events).
type BufferedSource struct {
	payload     *Payload
	sampleRate  int
	numChannels int
	tracker     *PositionTracker

	eq        *dsp.Equalizer
	eqEnabled bool
	rt        <-chan RealtimeCommand

	scratch    [Chunk]float64
	scratchPos int
	scratchLen int
	eof        bool
}

func newBufferedSource(p *Payload, eq *dsp.Equalizer, eqEnabled bool, rt <-chan RealtimeCommand) *BufferedSource {
	return &BufferedSource{
		payload:     p,
		sampleRate:  p.Metadata.SampleRate,
		numChannels: p.Metadata.NumChannels,
		tracker:     p.Tracker,
		eq:          eq,
		eqEnabled:   eqEnabled,
		rt:          rt,
	}
}

// SampleRate returns the sample rate reported to the output device.
func (s *BufferedSource) SampleRate() int { return s.sampleRate }

// NumChannels returns the channel count reported to the output device.
func (s *BufferedSource) NumChannels() int { return s.numChannels }

// Remaining returns total - position, in interleaved samples.
func (s *BufferedSource) Remaining() int64 {
	return s.tracker.Total() - s.tracker.Index()
}

// TotalDuration returns frames / sampleRate in seconds.
func (s *BufferedSource) TotalDuration() float64 {
	return s.tracker.DurationSeconds()
}

// drainRealtime applies every pending realtime command without blocking.
func (s *BufferedSource) drainRealtime() {
	for {
		select {
		case cmd, ok := <-s.rt:
			if !ok {
				return
			}
			s.applyRealtime(cmd)
		default:
			return
		}
	}
}

func (s *BufferedSource) applyRealtime(cmd RealtimeCommand) {
	switch cmd.Kind {
	case RTSetEqEnabled:
		s.eqEnabled = cmd.Enabled
	case RTSetEqMasterGain:
		s.eq.SetMasterGain(cmd.MasterGain)
	case RTUpdateEqFilter:
		s.eq.UpdateFilter(cmd.FilterIndex, cmd.Filter)
	case RTSetAllEqFilters:
		s.eq.SetAllFilters(cmd.AllFilters)
	case RTSetEqPreset:
		s.eq.SetPreset(cmd.Preset)
	case RTResetEq:
		s.eq.ResetParameters()
	case RTResetEqFilterNode:
		_ = s.eq.ResetFilterNode(cmd.FilterIndex)
	}
}

// refill drains realtime commands, reads the next chunk of interleaved
// samples from the shared buffer, and runs the EQ over it if enabled.
func (s *BufferedSource) refill() {
	s.drainRealtime()

	pos := s.tracker.Index()
	total := s.tracker.Total()
	available := total - pos
	if available <= 0 {
		s.scratchLen = 0
		s.eof = true
		return
	}

	n := int64(Chunk)
	if available < n {
		n = available
	}

	numChannels := s.numChannels
	if numChannels <= 0 {
		numChannels = 1
	}
	// Keep chunk boundaries aligned to whole frames so the EQ's
	// channel-selection (i % numChannels) stays consistent across chunks.
	n -= n % int64(numChannels)
	if n <= 0 {
		n = available
		if n > int64(numChannels) {
			n = int64(numChannels)
		}
	}

	for i := int64(0); i < n; i++ {
		s.scratch[i] = float64(s.payload.Samples[pos+i])
	}
	s.scratchLen = int(n)
	s.scratchPos = 0

	if s.eqEnabled {
		s.eq.ProcessFrame(s.scratch[:s.scratchLen])
	}
}

// nextSample returns the next output sample, advancing position by one
// after the value has been read (so readers see a conservative estimate).
func (s *BufferedSource) nextSample() (float64, bool) {
	if s.scratchPos >= s.scratchLen {
		if s.eof {
			return 0, false
		}
		s.refill()
		if s.scratchLen == 0 {
			return 0, false
		}
	}
	v := s.scratch[s.scratchPos]
	s.scratchPos++
	s.tracker.Advance(1)
	return v, true
}

// Stream implements the beep.Streamer interface by pulling one frame
// (numChannels interleaved samples) per output sample pair. Mono sources
// duplicate their single channel to both outputs; sources with more than
// two channels downmix by averaging even/odd channels into left/right,
// an intentional simplification (the EQ itself processes every channel,
// this only affects what reaches a stereo output device).
func (s *BufferedSource) Stream(samples [][2]float64) (n int, ok bool) {
	numChannels := s.numChannels
	if numChannels <= 0 {
		numChannels = 1
	}

	for i := range samples {
		var left, right float64
		var leftCount, rightCount int
		got := false
		for ch := 0; ch < numChannels; ch++ {
			v, more := s.nextSample()
			if !more {
				break
			}
			got = true
			if ch%2 == 0 {
				left += v
				leftCount++
			} else {
				right += v
				rightCount++
			}
		}
		if !got {
			return n, n > 0
		}
		if leftCount > 0 {
			left /= float64(leftCount)
		}
		if rightCount > 0 {
			right /= float64(rightCount)
		} else {
			right = left
		}
		samples[i][0] = left
		samples[i][1] = right
		n++
	}
	return n, true
}

// Err reports a streaming error; the buffered source never fails on its
// own (exhaustion is signalled via Stream's ok=false), so it always returns nil.
func (s *BufferedSource) Err() error { return nil }
