// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecycle/wavecycle/audio"
)

func TestDeckRecordThenPlay(t *testing.T) {
	conf := captureTestConfig()

	source := &scriptSource{steps: []scriptStep{{n: 10000}, {n: 10000}}}
	sink := &collectSink{}
	storage := newMemStorage()

	deck, err := NewDeck(conf, source, sink, storage)
	require.NoError(t, err)
	deck.Capture().RetryInterval = time.Microsecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Playback must never touch storage before capture finalized
	var orderViolations atomic.Int32
	sink.onWrite = func(total int) {
		if deck.Capture().State() != CaptureDone || !deck.Recorded().IsSet() {
			orderViolations.Add(1)
		}
		if total >= 32000 {
			cancel()
		}
	}

	require.NoError(t, deck.Run(ctx))

	assert.Equal(t, CaptureDone, deck.Capture().State())
	assert.Equal(t, PlaybackStopped, deck.Playback().State())
	assert.EqualValues(t, 16000, deck.Capture().BytesWritten())
	assert.Zero(t, orderViolations.Load())
	assert.False(t, storage.isMounted())
	// Mount held in strict phases: once by capture, once by playback
	assert.Equal(t, 2, storage.mounts)
	assert.Equal(t, 2, storage.unmounts)
}

func TestDeckAuxiliaryTasks(t *testing.T) {
	conf := captureTestConfig()

	source := &scriptSource{steps: []scriptStep{{n: 10000}, {n: 10000}}}
	sink := &collectSink{}
	storage := newMemStorage()

	var ticks atomic.Int32
	deck, err := NewDeck(conf, source, sink, storage,
		// Requested below the floor, must be clamped to a coarse tick
		WithAuxiliaryTask("counter", time.Millisecond, func(ctx context.Context) {
			ticks.Add(1)
		}),
	)
	require.NoError(t, err)
	deck.Capture().RetryInterval = time.Microsecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(100*time.Millisecond, cancel)

	require.NoError(t, deck.Run(ctx))
	assert.GreaterOrEqual(t, ticks.Load(), int32(1), "auxiliary task must get scheduled beside the audio tasks")
	assert.Equal(t, len(deck.aux), 1)
	assert.Equal(t, minAuxInterval, deck.aux[0].interval)
}

// Capture failing mid stream must not leave playback deadlocked and the
// error must surface from Run.
func TestDeckCaptureFailureUnblocksPlayback(t *testing.T) {
	conf := captureTestConfig()

	source := &scriptSource{steps: []scriptStep{{n: 4000}, {err: fmt.Errorf("mic detached")}}}
	sink := &collectSink{}
	storage := newMemStorage()

	deck, err := NewDeck(conf, source, sink, storage)
	require.NoError(t, err)
	deck.Capture().RetryInterval = time.Microsecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink.onWrite = func(total int) {
		if total >= 4000 {
			cancel()
		}
	}

	err = deck.Run(ctx)
	var hwErr *HardwareError
	require.ErrorAs(t, err, &hwErr)

	assert.Equal(t, CaptureFailed, deck.Capture().State())
	assert.Equal(t, PlaybackStopped, deck.Playback().State())
	assert.True(t, deck.Recorded().IsSet())
	// Playback got unblocked and played the partial recording
	assert.NotEmpty(t, sink.writeSizes())
}

func TestNewDeckRejectsInvalidConfig(t *testing.T) {
	conf := captureTestConfig()
	conf.BitDepth = 24

	_, err := NewDeck(conf, &scriptSource{}, &collectSink{}, newMemStorage())
	require.ErrorIs(t, err, audio.ErrInvalidFormat)
}
