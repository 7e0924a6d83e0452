package engine

import (
	"testing"

	"audido/internal/dsp"
	"audido/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discardLogger satisfies Logger and drops every message.
type discardLogger struct{}

func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}

// newTestEngine builds an Engine without acquiring a real output device,
// so these tests exercise queue/EQ command dispatch without touching
// beep/speaker, which requires a real audio backend.
func newTestEngine() *Engine {
	return &Engine{
		log:        discardLogger{},
		sink:       &outputSink{},
		q:          queue.New(),
		eq:         dsp.NewEqualizer(44100, 2, nil),
		eqEnabled:  true,
		sampleRate: 44100,
		cmds:       make(chan Command, 4),
		resp:       make(chan Response, 4),
	}
}

func TestAddToQueueAppendsAndEmits(t *testing.T) {
	e := newTestEngine()
	cont := e.handle(Command{Kind: CmdAddToQueue, Paths: []string{"a.mp3", "b.mp3"}})
	require.True(t, cont)
	assert.Equal(t, 2, e.q.Len())

	r := <-e.resp
	assert.Equal(t, RespQueueUpdated, r.Kind)
	assert.Len(t, r.Queue, 2)
}

func TestRemoveFromQueue(t *testing.T) {
	e := newTestEngine()
	e.handle(Command{Kind: CmdAddToQueue, Paths: []string{"a.mp3", "b.mp3"}})
	<-e.resp
	id := e.q.Items()[0].ID

	e.handle(Command{Kind: CmdRemoveFromQueue, QueueID: id})
	<-e.resp
	assert.Equal(t, 1, e.q.Len())
}

func TestSetLoopModeUpdatesQueueAndEmits(t *testing.T) {
	e := newTestEngine()
	e.handle(Command{Kind: CmdSetLoopMode, LoopMode: queue.Shuffle})
	assert.Equal(t, queue.Shuffle, e.q.LoopMode())

	r := <-e.resp
	assert.Equal(t, RespLoopModeChanged, r.Kind)
	assert.Equal(t, queue.Shuffle, r.LoopMode)
}

func TestEqSetMasterGainConvertsDBToLinear(t *testing.T) {
	e := newTestEngine()
	e.handle(Command{Kind: CmdEqSetMasterGain, MasterGainDB: 6})
	assert.InDelta(t, 1.9953, e.eq.MasterGain(), 1e-3)
}

func TestEqSetPresetReplacesFilters(t *testing.T) {
	e := newTestEngine()
	e.handle(Command{Kind: CmdEqSetPreset, Preset: dsp.PresetBassBoosted})
	assert.Equal(t, dsp.PresetBassBoosted, e.eq.Preset())
	require.Len(t, e.eq.Filters(), 1)
	assert.Equal(t, dsp.LowShelf, e.eq.Filters()[0].Type)
}

func TestEqUpdateFilterClamps(t *testing.T) {
	e := newTestEngine()
	e.handle(Command{Kind: CmdEqSetAllFilters, AllFilters: []dsp.FilterNode{dsp.DefaultFilterNode()}})
	e.handle(Command{Kind: CmdEqUpdateFilter, FilterIndex: 0, Filter: dsp.FilterNode{
		Type: dsp.Peaking, Freq: 999999, Gain: 1000, Q: 1, Order: 2,
	}})
	got := e.eq.Filters()[0]
	assert.Equal(t, dsp.MaxFreq, got.Freq)
	assert.Equal(t, dsp.MaxGain, got.Gain)
}

func TestQuitCommandStopsLoop(t *testing.T) {
	e := newTestEngine()
	cont := e.handle(Command{Kind: CmdQuit})
	assert.False(t, cont)
}

func TestPreviousWithEmptyQueueIsNoop(t *testing.T) {
	e := newTestEngine()
	e.previous()
	select {
	case r := <-e.resp:
		t.Fatalf("expected no response, got %+v", r)
	default:
	}
}

func TestAdvanceWithEmptyQueueStopsOnNaturalEnd(t *testing.T) {
	e := newTestEngine()
	e.advance(true)
	r := <-e.resp
	assert.Equal(t, RespStopped, r.Kind)
}
