package audio

import "audido/internal/dsp"

// Payload is the decoded sample buffer plus immutable metadata and a
// position tracker shared across every source created from it. Samples
// are interleaved float32 in approximately [-1, 1].
type Payload struct {
	Metadata Metadata
	Samples  []float32
	Tracker  *PositionTracker
}

// NewPayload builds a Payload, deriving total sample count and duration
// from the decoded buffer.
func NewPayload(metadata Metadata, samples []float32) *Payload {
	numChannels := metadata.NumChannels
	if numChannels <= 0 {
		numChannels = 1
	}
	total := int64(len(samples))
	frames := total / int64(numChannels)
	if metadata.SampleRate > 0 {
		metadata.Duration = float64(frames) / float64(metadata.SampleRate)
	}
	return &Payload{
		Metadata: metadata,
		Samples:  samples,
		Tracker:  NewPositionTracker(total, metadata.SampleRate, numChannels),
	}
}

// NewSource builds a fresh BufferedSource reading from this payload's
// shared buffer and position tracker, with its own equalizer instance and
// realtime command channel.
func (p *Payload) NewSource(eq *dsp.Equalizer, eqEnabled bool, rt <-chan RealtimeCommand) *BufferedSource {
	return newBufferedSource(p, eq, eqEnabled, rt)
}
