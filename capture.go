// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wavecycle/wavecycle/audio"
)

// DefaultReadRetryInterval is how long capture yields after the source
// reports no samples ready.
const DefaultReadRetryInterval = 1 * time.Millisecond

type CaptureState int32

const (
	CaptureIdle CaptureState = iota
	CaptureMounting
	CaptureStreaming
	CaptureFinalizing
	CaptureDone
	CaptureFailed
)

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureMounting:
		return "mounting"
	case CaptureStreaming:
		return "streaming"
	case CaptureFinalizing:
		return "finalizing"
	case CaptureDone:
		return "done"
	case CaptureFailed:
		return "failed"
	}
	return "unknown"
}

// Capture streams microphone samples into a WAV file on storage until the
// configured byte quota is reached. Whatever way streaming ends, the
// finalizer releases storage and hardware and fires the completion signal
// so downstream never deadlocks.
type Capture struct {
	// ID of the recording session
	ID string

	conf    Config
	source  Source
	storage Storage
	buf     *audio.SampleBuffer
	done    *Event

	// Log and Metrics may be replaced before Run.
	Log     zerolog.Logger
	Metrics *Metrics

	// RetryInterval overrides the yield period after an empty read.
	RetryInterval time.Duration

	state   atomic.Int32
	written atomic.Uint64
	info    audio.FileInfo
}

func NewCapture(conf Config, source Source, storage Storage, buf *audio.SampleBuffer, done *Event) *Capture {
	return &Capture{
		ID:            uuid.NewString(),
		conf:          conf,
		source:        source,
		storage:       storage,
		buf:           buf,
		done:          done,
		Metrics:       NewMetrics(nil),
		Log:           zerolog.Nop(),
		RetryInterval: DefaultReadRetryInterval,
	}
}

func (c *Capture) State() CaptureState {
	return CaptureState(c.state.Load())
}

func (c *Capture) setState(s CaptureState) {
	c.state.Store(int32(s))
}

// BytesWritten is sample bytes persisted so far. Monotonic, never exceeds
// the target quota.
func (c *Capture) BytesWritten() uint64 {
	return c.written.Load()
}

// FileInfo describes the finished recording, read back from storage during
// finalize. Zero value until Run completed without error.
func (c *Capture) FileInfo() audio.FileInfo {
	return c.info
}

// Run drives the session to completion. It returns nil when the quota was
// reached, the cancellation cause on interrupt, and the pipeline error
// otherwise. The completion signal fires on every path.
func (c *Capture) Run(ctx context.Context) error {
	target := c.conf.TargetBytes()
	c.Log.Info().Str("id", c.ID).Str("file", c.conf.FileName()).
		Uint64("target_bytes", target).Msg("Recording started")
	started := time.Now()

	c.setState(CaptureMounting)
	if err := c.storage.Mount(); err != nil {
		return c.fail(&StorageError{Op: "mount", Err: err})
	}

	file, err := c.storage.Create(c.conf.FileName())
	if err != nil {
		c.unmount()
		return c.fail(&StorageError{Op: "create", Err: err})
	}

	streamErr := c.stream(ctx, file, target)

	c.setState(CaptureFinalizing)
	if err := file.Close(); err != nil && streamErr == nil {
		streamErr = &StorageError{Op: "close", Err: err}
	}
	if streamErr == nil {
		c.info = c.inspect()
	}
	c.unmount()
	if err := c.source.Close(); err != nil && streamErr == nil {
		streamErr = &HardwareError{Op: "close", Err: err}
	}
	// Terminal state must be visible before the signal wakes downstream.
	if streamErr != nil {
		c.setState(CaptureFailed)
	} else {
		c.setState(CaptureDone)
	}
	c.done.Set()
	c.Metrics.RecordSessionDuration(time.Since(started).Seconds())

	if streamErr != nil {
		if IsUserInterrupt(streamErr) {
			c.Log.Info().Str("id", c.ID).Msg("Recording interrupted")
		} else {
			c.Log.Error().Err(streamErr).Str("id", c.ID).Msg("Recording failed")
		}
		return streamErr
	}

	c.Log.Info().Str("id", c.ID).Uint64("bytes", c.BytesWritten()).
		Str("format", c.info.Format.String()).Dur("length", c.info.Duration).
		Msg("Recording done")
	return nil
}

// inspect reads the finished file's header back while storage is still
// mounted.
func (c *Capture) inspect() audio.FileInfo {
	f, err := c.storage.Open(c.conf.FileName())
	if err != nil {
		c.Log.Warn().Err(err).Str("id", c.ID).Msg("Recording readback failed")
		return audio.FileInfo{}
	}
	defer f.Close()

	info, err := audio.ReadFileInfo(f)
	if err != nil {
		c.Log.Warn().Err(err).Str("id", c.ID).Msg("Recording readback failed")
		return audio.FileInfo{}
	}
	return info
}

func (c *Capture) stream(ctx context.Context, file File, target uint64) error {
	ww := audio.NewWavWriter(file, c.conf.Format(), c.conf.Format().SamplesForDuration(c.conf.RecordDuration()))
	if err := ww.WriteHeader(); err != nil {
		return &StorageError{Op: "write header", Err: err}
	}

	c.setState(CaptureStreaming)
	buf := c.buf.Bytes()
	retry := time.NewTimer(c.RetryInterval)
	defer retry.Stop()

	for c.written.Load() < target {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := c.source.Read(buf)
		if err != nil {
			return &HardwareError{Op: "read", Err: err}
		}
		if n == 0 {
			// No sample data ready in DMA memory. Not an error, yield and
			// retry.
			c.Metrics.RecordUnderrun()
			retry.Reset(c.RetryInterval)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-retry.C:
			}
			continue
		}

		toWrite := min(uint64(n), target-c.written.Load())
		if _, err := ww.Write(c.buf.View(int(toWrite))); err != nil {
			return &StorageError{Op: "write", Err: err}
		}
		c.written.Add(toWrite)
		c.Metrics.RecordCaptured(int(toWrite))
	}
	return nil
}

func (c *Capture) fail(err error) error {
	c.setState(CaptureFailed)
	// Mount phase failures still must unblock downstream waiters and
	// release the hardware handle.
	c.done.Set()
	if cerr := c.source.Close(); cerr != nil {
		c.Log.Error().Err(cerr).Str("id", c.ID).Msg("Source close failed")
	}
	c.Log.Error().Err(err).Str("id", c.ID).Msg("Recording failed")
	return err
}

func (c *Capture) unmount() {
	if err := c.storage.Unmount(); err != nil {
		c.Log.Error().Err(err).Str("id", c.ID).Msg("Unmount failed")
	}
}
