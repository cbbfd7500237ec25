// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleBuffer(t *testing.T) {
	buf, err := NewSampleBuffer(100)
	require.NoError(t, err)
	assert.Equal(t, 100, buf.Cap())
	assert.Len(t, buf.Bytes(), 100)

	view := buf.View(40)
	assert.Len(t, view, 40)

	// Views share the same backing region
	view[0] = 0xAB
	assert.Equal(t, byte(0xAB), buf.Bytes()[0])

	assert.Len(t, buf.View(1000), 100)
	assert.Len(t, buf.View(-1), 0)

	_, err = NewSampleBuffer(0)
	require.Error(t, err)
}

func TestBufferPool(t *testing.T) {
	pool, err := NewBufferPool(DefaultBufferSize)
	require.NoError(t, err)

	capture := pool.Capture()
	playback := pool.Playback()
	require.Equal(t, DefaultBufferSize, capture.Cap())
	require.Equal(t, DefaultBufferSize, playback.Cap())

	// Pipelines own distinct regions, never shared
	capture.Bytes()[0] = 0x11
	assert.Equal(t, byte(0), playback.Bytes()[0])

	// Long lived, stable across acquisitions
	assert.Same(t, capture, pool.Capture())
	assert.Same(t, playback, pool.Playback())
}
