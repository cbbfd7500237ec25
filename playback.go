// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/wavecycle/wavecycle/audio"
)

type PlaybackState int32

const (
	PlaybackWaiting PlaybackState = iota
	PlaybackMounting
	PlaybackStreaming
	PlaybackStopped
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackWaiting:
		return "waiting"
	case PlaybackMounting:
		return "mounting"
	case PlaybackStreaming:
		return "streaming"
	case PlaybackStopped:
		return "stopped"
	}
	return "unknown"
}

// Playback streams a recorded WAV file to the hardware sink in an endless
// loop. It never starts before the upstream recording has finished, so the
// two pipelines never race on the file or the storage mount.
type Playback struct {
	conf     Config
	sink     Sink
	storage  Storage
	buf      *audio.SampleBuffer
	upstream *Event

	// Log and Metrics may be replaced before Run.
	Log     zerolog.Logger
	Metrics *Metrics

	state atomic.Int32
	loops atomic.Uint64
}

func NewPlayback(conf Config, sink Sink, storage Storage, buf *audio.SampleBuffer, upstream *Event) *Playback {
	return &Playback{
		conf:     conf,
		sink:     sink,
		storage:  storage,
		buf:      buf,
		upstream: upstream,
		Metrics:  NewMetrics(nil),
		Log:      zerolog.Nop(),
	}
}

func (p *Playback) State() PlaybackState {
	return PlaybackState(p.state.Load())
}

func (p *Playback) setState(s PlaybackState) {
	p.state.Store(int32(s))
}

// Loops is how many times playback wrapped to the start of the data chunk.
func (p *Playback) Loops() uint64 {
	return p.loops.Load()
}

// Run plays the file until ctx is cancelled or an unrecoverable IO error.
// End of data is neither, playback re-seeks to the first sample byte and
// keeps going.
func (p *Playback) Run(ctx context.Context) error {
	p.setState(PlaybackWaiting)
	p.Log.Info().Msg("Waiting for recording to complete")
	if err := p.upstream.Wait(ctx); err != nil {
		p.closeSink()
		p.setState(PlaybackStopped)
		return err
	}

	p.setState(PlaybackMounting)
	if err := p.storage.Mount(); err != nil {
		p.closeSink()
		p.setState(PlaybackStopped)
		serr := &StorageError{Op: "mount", Err: err}
		p.Log.Error().Err(serr).Msg("Playback failed")
		return serr
	}

	streamErr := p.playFile(ctx)

	p.unmount()
	if err := p.sink.Close(); err != nil && streamErr == nil {
		streamErr = &HardwareError{Op: "close", Err: err}
	}
	p.setState(PlaybackStopped)

	if streamErr != nil && !IsUserInterrupt(streamErr) {
		p.Log.Error().Err(streamErr).Msg("Playback failed")
		return streamErr
	}
	p.Log.Info().Uint64("loops", p.Loops()).Msg("Playback stopped")
	return streamErr
}

func (p *Playback) playFile(ctx context.Context) error {
	file, err := p.storage.Open(p.conf.FileName())
	if err != nil {
		return &StorageError{Op: "open", Err: err}
	}
	defer file.Close()

	// Advance to first byte of the data section. Header contents are not
	// verified here, a recording always carries the fixed 44 byte prologue.
	if _, err := file.Seek(audio.DataOffset, io.SeekStart); err != nil {
		return &StorageError{Op: "seek", Err: err}
	}

	p.setState(PlaybackStreaming)
	p.Log.Info().Str("file", p.conf.FileName()).Msg("Playback started")

	buf := p.buf.Bytes()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := file.Read(buf)
		if n > 0 {
			if _, err := p.sink.Write(p.buf.View(n)); err != nil {
				return &HardwareError{Op: "write", Err: err}
			}
			// Suspend until the sink drained what we handed it. The sink's
			// accept rate paces this loop, not the storage read rate.
			if err := p.sink.Drain(ctx); err != nil {
				if IsUserInterrupt(err) {
					return err
				}
				return &HardwareError{Op: "drain", Err: err}
			}
			p.Metrics.RecordPlayed(n)
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return &StorageError{Op: "read", Err: err}
		}

		// End of data. Wrap to the first sample byte and continue.
		if _, err := file.Seek(audio.DataOffset, io.SeekStart); err != nil {
			return &StorageError{Op: "seek", Err: err}
		}
		p.loops.Add(1)
		p.Metrics.RecordLoopRestart()
	}
}

// closeSink releases the hardware handle on paths that never reach the
// post-stream finalizer.
func (p *Playback) closeSink() {
	if err := p.sink.Close(); err != nil {
		p.Log.Error().Err(err).Msg("Sink close failed")
	}
}

func (p *Playback) unmount() {
	if err := p.storage.Unmount(); err != nil {
		p.Log.Error().Err(err).Msg("Unmount failed")
	}
}
