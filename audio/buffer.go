// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import "fmt"

// DefaultBufferSize is sample buffer capacity used when none is configured.
const DefaultBufferSize = 10000

// SampleBuffer is a fixed capacity byte region reused across streaming
// iterations. It never grows. Ownership is exclusive to the pipeline
// holding it.
type SampleBuffer struct {
	data []byte
}

func NewSampleBuffer(capacity int) (*SampleBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("sample buffer capacity must be positive, got %d", capacity)
	}
	return &SampleBuffer{data: make([]byte, capacity)}, nil
}

// Bytes returns the full capacity region for reads to fill.
func (b *SampleBuffer) Bytes() []byte {
	return b.data
}

// View returns the sub range holding the first n bytes, for partial writes.
// n is clamped to capacity.
func (b *SampleBuffer) View(n int) []byte {
	if n > len(b.data) {
		n = len(b.data)
	}
	if n < 0 {
		n = 0
	}
	return b.data[:n]
}

func (b *SampleBuffer) Cap() int {
	return len(b.data)
}

// BufferPool pre-allocates the two long lived streaming buffers, one for
// capture and one for playback, so the per chunk loops never allocate.
type BufferPool struct {
	capture  *SampleBuffer
	playback *SampleBuffer
}

func NewBufferPool(capacity int) (*BufferPool, error) {
	capture, err := NewSampleBuffer(capacity)
	if err != nil {
		return nil, err
	}
	playback, err := NewSampleBuffer(capacity)
	if err != nil {
		return nil, err
	}
	return &BufferPool{capture: capture, playback: playback}, nil
}

func (p *BufferPool) Capture() *SampleBuffer {
	return p.capture
}

func (p *BufferPool) Playback() *SampleBuffer {
	return p.playback
}
