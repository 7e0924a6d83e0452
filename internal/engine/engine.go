// Package engine implements the playback state machine: it owns the
// output device, the shadow equalizer, the playback queue, and the
// currently loaded track, driving all of it from a single goroutine that
// processes Commands and emits Responses.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"audido/internal/audio"
	"audido/internal/dsp"
	"audido/internal/queue"
)

const commandPollTimeout = 50 * time.Millisecond

// Logger is the minimal structured-logging surface the engine needs;
// *logging.Logger satisfies it.
type Logger interface {
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

// Engine owns all playback state and must only be touched from the
// goroutine running Run; callers interact exclusively through Commands
// and Responses.
type Engine struct {
	log Logger

	sink *outputSink
	q    *queue.Queue

	// eq is the engine's authoritative (shadow) copy of EQ parameters.
	// Structural changes (SetAllFilters, SetPreset, ResetParameters,
	// num-channel change on track load) are applied here directly; the
	// playing source holds an independent Equalizer built fresh at Load
	// time and kept in sync only via realtime commands on rt.
	eq        *dsp.Equalizer
	eqEnabled bool

	current  *audio.Payload
	src      *audio.BufferedSource
	rt       chan audio.RealtimeCommand
	sampleRate int

	cmds chan Command
	resp chan Response
}

// New constructs an Engine bound to a fresh output device at sampleRate.
// Device acquisition failure is fatal.
func New(sampleRate int, logger Logger) (*Engine, error) {
	sink, err := newOutputDevice(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	sink.SetVolume(1.0)

	return &Engine{
		log:        logger,
		sink:       sink,
		q:          queue.New(),
		eq:         dsp.NewEqualizer(float64(sampleRate), 2, nil),
		eqEnabled:  true,
		sampleRate: sampleRate,
		cmds:       make(chan Command, 1),
		resp:       make(chan Response, 1),
	}, nil
}

// Commands returns the channel the UI sends Commands on. The channel is
// never closed by the engine; send CmdQuit to request shutdown.
func (e *Engine) Commands() chan<- Command { return e.cmds }

// Responses returns the channel the UI receives Responses on.
func (e *Engine) Responses() <-chan Response { return e.resp }

// Samples returns the last n mono samples from the output pipeline's tap,
// for the spectrum visualizer. Safe to call from the UI goroutine: the
// tap's ring buffer has its own mutex independent of engine state.
func (e *Engine) Samples(n int) []float64 { return e.sink.Samples(n) }

// Clipped reports whether the currently playing track has clipped (hit
// full scale) since the last ResetClipped call. Safe to call from the UI
// goroutine for the same reason as Samples.
func (e *Engine) Clipped() bool { return e.sink.Clipped() }

// ResetClipped clears the clip indicator. The UI calls this after
// rendering it so each render reflects only audio since the last frame.
func (e *Engine) ResetClipped() { e.sink.ResetClipped() }

// Run is the engine's command loop. It blocks until ctx is cancelled or a
// CmdQuit command is processed, and must run on its own goroutine — it is
// the single writer of all engine state.
func (e *Engine) Run(ctx context.Context) {
	defer e.log.Info("engine stopped")
	e.log.Info("engine started", "sample_rate", e.sampleRate)

	ticker := time.NewTicker(commandPollTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.sink.Stop()
			e.emit(Response{Kind: RespShutdown})
			return
		case cmd := <-e.cmds:
			if !e.handle(cmd) {
				e.sink.Stop()
				e.emit(Response{Kind: RespShutdown})
				return
			}
		case <-ticker.C:
			e.pollPlayback()
		}
	}
}

// emit sends r without blocking the command loop: if the response
// channel's single buffer slot is full, a goroutine is spawned to deliver
// r later, so nothing is dropped, but responses delivered that way may
// arrive out of order.
func (e *Engine) emit(r Response) {
	select {
	case e.resp <- r:
	default:
		go func() { e.resp <- r }()
	}
}

// pollPlayback checks for natural end-of-track and reports position.
func (e *Engine) pollPlayback() {
	if e.src == nil {
		return
	}
	if e.sink.Empty() {
		e.log.Info("track finished", "path", e.current.Metadata.FilePath)
		e.current.Tracker.Reset()
		e.advance(true)
		return
	}
	e.emit(Response{
		Kind:     RespPosition,
		Position: e.current.Tracker.PositionSeconds(),
		Duration: e.current.Tracker.DurationSeconds(),
	})
}

// handle dispatches a single command. Returns false when the engine
// should shut down (CmdQuit).
func (e *Engine) handle(cmd Command) bool {
	switch cmd.Kind {
	case CmdLoad:
		e.load(cmd.Path)
	case CmdPlay:
		e.play()
	case CmdPause:
		e.pause()
	case CmdStop:
		e.stop()
	case CmdSeek:
		e.seek(cmd.Seconds)
	case CmdSetVolume:
		e.sink.SetVolume(cmd.Volume)
	case CmdSetSpeed:
		e.sink.SetSpeed(cmd.Speed)
	case CmdNext:
		e.advance(false)
	case CmdPrevious:
		e.previous()
	case CmdAddToQueue:
		e.addToQueue(cmd)
	case CmdRemoveFromQueue:
		e.q.Remove(cmd.QueueID)
		e.emitQueue()
	case CmdClearQueue:
		e.stop()
		e.q.Clear()
		e.emitQueue()
	case CmdSetLoopMode:
		e.q.SetLoopMode(cmd.LoopMode)
		e.emit(Response{Kind: RespLoopModeChanged, LoopMode: cmd.LoopMode})
	case CmdPlayQueueIndex:
		e.q.SetCurrentIndex(cmd.Index)
		e.loadCurrent()
	case CmdEqSetEnabled:
		e.eqEnabled = cmd.Enabled
		e.sendRT(audio.RealtimeCommand{Kind: audio.RTSetEqEnabled, Enabled: cmd.Enabled})
	case CmdEqSetMasterGain:
		linear := math.Pow(10, cmd.MasterGainDB/20)
		e.eq.SetMasterGain(linear)
		e.sendRT(audio.RealtimeCommand{Kind: audio.RTSetEqMasterGain, MasterGain: linear})
	case CmdEqSetPreset:
		e.eq.SetPreset(cmd.Preset)
		e.sendRT(audio.RealtimeCommand{Kind: audio.RTSetEqPreset, Preset: cmd.Preset})
	case CmdEqSetAllFilters:
		e.eq.SetAllFilters(cmd.AllFilters)
		e.sendRT(audio.RealtimeCommand{Kind: audio.RTSetAllEqFilters, AllFilters: cmd.AllFilters})
	case CmdEqUpdateFilter:
		e.eq.UpdateFilter(cmd.FilterIndex, cmd.Filter)
		e.sendRT(audio.RealtimeCommand{Kind: audio.RTUpdateEqFilter, FilterIndex: cmd.FilterIndex, Filter: cmd.Filter})
	case CmdEqResetParameters:
		e.eq.ResetParameters()
		e.sendRT(audio.RealtimeCommand{Kind: audio.RTResetEq})
	case CmdEqResetFilterNode:
		_ = e.eq.ResetFilterNode(cmd.FilterIndex)
		e.sendRT(audio.RealtimeCommand{Kind: audio.RTResetEqFilterNode, FilterIndex: cmd.FilterIndex})
	case CmdQuit:
		return false
	}
	return true
}

// sendRT forwards a realtime command to the currently playing source's
// single-consumer channel, if one exists. Non-blocking: the channel is
// sized generously and drained every chunk, so this should never block in
// practice, but we never risk stalling the command loop on it.
func (e *Engine) sendRT(cmd audio.RealtimeCommand) {
	if e.rt == nil {
		return
	}
	select {
	case e.rt <- cmd:
	default:
		e.log.Warn("realtime command channel full, dropping oldest is not permitted; spinning a goroutine to deliver", "kind", cmd.Kind)
		go func() { e.rt <- cmd }()
	}
}

func (e *Engine) addToQueue(cmd Command) {
	paths := cmd.Paths
	if cmd.Path != "" {
		paths = append(paths, cmd.Path)
	}
	ids := e.q.Add(paths)
	e.emitQueue()

	if e.src == nil && !e.sink.IsPaused() && len(ids) > 0 {
		for i, it := range e.q.Items() {
			if it.ID == ids[0] {
				e.q.SetCurrentIndex(i)
				e.loadCurrent()
				break
			}
		}
	}
}

func (e *Engine) emitQueue() {
	e.emit(Response{Kind: RespQueueUpdated, Queue: e.q.Items(), LoopMode: e.q.LoopMode()})
}

// load decodes path, appends it to the queue, and makes it current.
func (e *Engine) load(path string) {
	payload, err := audio.DecodeFile(path)
	if err != nil {
		e.log.Error("decode failed", "path", path, "err", err)
		e.emit(Response{Kind: RespError, Err: fmt.Errorf("load %s: %w", path, err)})
		return
	}
	ids := e.q.Add([]string{path})
	for i, it := range e.q.Items() {
		if it.ID == ids[0] {
			e.q.SetCurrentIndex(i)
			break
		}
	}
	e.startPayload(payload)
	e.emitQueue()
}

// loadCurrent decodes and starts the queue's current item.
func (e *Engine) loadCurrent() {
	item, ok := e.q.Current()
	if !ok {
		e.stop()
		return
	}
	payload, err := audio.DecodeFile(item.Path)
	if err != nil {
		e.log.Error("decode failed", "path", item.Path, "err", err)
		e.emit(Response{Kind: RespError, Err: fmt.Errorf("load %s: %w", item.Path, err)})
		return
	}
	meta := payload.Metadata
	e.q.SetMetadata(item.ID, meta)
	e.startPayload(payload)
}

// startPayload is the track-change helper: stop whatever is
// playing, rebuild the shadow EQ for the new channel count, build a fresh
// source and realtime channel, append it paused, and then start playback
// with a fade-in.
func (e *Engine) startPayload(payload *audio.Payload) {
	if e.src != nil {
		fadeVolume(e.sink, 0)
	}
	e.sink.Stop()
	e.current = payload

	e.eq.SetNumChannels(payload.Metadata.NumChannels)
	trackEQ := dsp.NewEqualizer(float64(payload.Metadata.SampleRate), payload.Metadata.NumChannels, e.eq.Filters())
	trackEQ.SetMasterGain(e.eq.MasterGain())
	trackEQ.SetPreset(e.eq.Preset())
	trackEQ.SetAllFilters(e.eq.Filters())

	e.rt = make(chan audio.RealtimeCommand, 16)
	e.src = payload.NewSource(trackEQ, e.eqEnabled, e.rt)

	e.sink.Append(e.src)
	e.emit(Response{Kind: RespLoaded, Metadata: payload.Metadata})
	e.emit(Response{Kind: RespTrackChanged, Metadata: payload.Metadata})
	e.play()
}

func (e *Engine) play() {
	if e.src == nil {
		return
	}
	e.sink.Play()
	fadeVolume(e.sink, e.targetVolume())
	e.emit(Response{Kind: RespPlaying})
}

func (e *Engine) pause() {
	if e.src == nil {
		return
	}
	fadeVolume(e.sink, 0)
	e.sink.Pause()
	e.emit(Response{Kind: RespPaused})
}

func (e *Engine) stop() {
	if e.src != nil {
		fadeVolume(e.sink, 0)
	}
	if e.current != nil {
		e.current.Tracker.Reset()
	}
	e.sink.Stop()
	e.src = nil
	e.current = nil
	e.rt = nil
	e.emit(Response{Kind: RespStopped, Position: 0, Duration: 0})
}

func (e *Engine) seek(seconds float64) {
	if e.current == nil {
		return
	}
	e.current.Tracker.SeekSeconds(seconds)
}

// targetVolume is the steady-state sink volume fades converge on; callers
// of CmdSetVolume have already pushed it onto the sink directly, so a
// fresh play/pause fade targets whatever the sink was last told to use.
func (e *Engine) targetVolume() float64 {
	if v := e.sink.Volume(); v > 0 {
		return v
	}
	return 1.0
}

// advance moves to the next queue item according to the loop mode. natural
// is true when called because the current track finished on its own (as
// opposed to an explicit CmdNext); when no next item exists, a natural end
// stops playback while an explicit CmdNext leaves it unchanged.
func (e *Engine) advance(natural bool) {
	idx, ok := e.q.NextIndex()
	if !ok {
		if natural {
			e.stop()
		}
		return
	}
	e.q.SetCurrentIndex(idx)
	e.loadCurrent()
}

func (e *Engine) previous() {
	idx, ok := e.q.PrevIndex()
	if !ok {
		return
	}
	e.q.SetCurrentIndex(idx)
	e.loadCurrent()
}
