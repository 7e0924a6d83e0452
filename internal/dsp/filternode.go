// Package dsp implements the parametric equalizer: RBJ biquad design,
// Direct-Form II Transposed cascades, and click-free live parameter updates.
package dsp

import "math"

// FilterType is the closed set of EQ band shapes.
type FilterType int

const (
	Peaking FilterType = iota
	LowPass
	HighPass
	LowShelf
	HighShelf
	BandPass
	Notch
)

func (t FilterType) String() string {
	switch t {
	case LowPass:
		return "LowPass"
	case HighPass:
		return "HighPass"
	case LowShelf:
		return "LowShelf"
	case HighShelf:
		return "HighShelf"
	case BandPass:
		return "BandPass"
	case Notch:
		return "Notch"
	default:
		return "Peaking"
	}
}

// Clamp bounds for filter node parameters.
const (
	MinFreq  = 20.0
	MaxFreq  = 20000.0
	MinGain  = -20.0
	MaxGain  = 20.0
	MinQ     = 0.1
	MaxQ     = 10.0
	MinOrder = 1
	MaxOrder = 16

	// MaxEQFilters bounds the number of bands an Equalizer may hold.
	MaxEQFilters = 8
)

// FilterNode describes one EQ band. All mutators clamp; the zero value is
// never used directly, use NewFilterNode or DefaultFilterNode.
type FilterNode struct {
	Type  FilterType
	Freq  float64 // Hz, clamped to [MinFreq, MaxFreq]
	Gain  float64 // dB, clamped to [MinGain, MaxGain]; meaningful only for Peaking/shelving
	Q     float64 // clamped to [MinQ, MaxQ]
	Order int     // clamped to [MinOrder, MaxOrder]; "number of 6 dB/oct sections"
}

// DefaultFilterNode returns the canonical default band: 1 kHz peaking, 0 dB, Q=0.707, order=2.
func DefaultFilterNode() FilterNode {
	return FilterNode{Type: Peaking, Freq: 1000, Gain: 0, Q: 0.707, Order: 2}
}

// NewFilterNode builds a clamped FilterNode at the given frequency with otherwise default parameters.
func NewFilterNode(freq float64) FilterNode {
	n := DefaultFilterNode()
	n.Freq = freq
	return n.Clamped()
}

// Clamped returns a copy of n with every field clamped to its documented range.
func (n FilterNode) Clamped() FilterNode {
	n.Freq = clamp(n.Freq, MinFreq, MaxFreq)
	n.Gain = clamp(n.Gain, MinGain, MaxGain)
	n.Q = clamp(n.Q, MinQ, MaxQ)
	if n.Order < MinOrder {
		n.Order = MinOrder
	}
	if n.Order > MaxOrder {
		n.Order = MaxOrder
	}
	return n
}

// SectionCount returns ceil(order/2), the number of cascaded biquads that approximate this band's order.
func (n FilterNode) SectionCount() int {
	c := int(math.Ceil(float64(n.Order) / 2.0))
	if c < 1 {
		c = 1
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
