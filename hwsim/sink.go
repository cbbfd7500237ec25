// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package hwsim

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/time/rate"

	"github.com/wavecycle/wavecycle/audio"
)

// DefaultSinkBuffer mirrors the DMA buffer size of the reference DAC.
const DefaultSinkBuffer = 40000

// RateLimitedSink simulates an I2S DAC. Writes land in a DMA sized buffer
// instantly, Drain blocks until the hardware would have clocked those
// bytes out at the sample rate. That drain is the back pressure pacing the
// playback loop.
type RateLimitedSink struct {
	limiter *rate.Limiter
	buffer  int

	mu      sync.Mutex
	pending int
	closed  bool
	out     io.Writer
}

// NewRateLimitedSink drains at format's byte rate with bufferBytes of DMA
// headroom. Written samples are forwarded to out, pass nil to discard.
func NewRateLimitedSink(format audio.Format, bufferBytes int, out io.Writer) *RateLimitedSink {
	if bufferBytes <= 0 {
		bufferBytes = DefaultSinkBuffer
	}
	if out == nil {
		out = io.Discard
	}
	return &RateLimitedSink{
		limiter: rate.NewLimiter(rate.Limit(format.ByteRate()), bufferBytes),
		buffer:  bufferBytes,
		out:     out,
	}
}

func (s *RateLimitedSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, os.ErrClosed
	}
	if len(p) > s.buffer {
		return 0, fmt.Errorf("write of %d bytes exceeds sink buffer %d", len(p), s.buffer)
	}
	n, err := s.out.Write(p)
	s.pending += n
	return n, err
}

func (s *RateLimitedSink) Drain(ctx context.Context) error {
	s.mu.Lock()
	n := s.pending
	s.pending = 0
	s.mu.Unlock()

	if n == 0 {
		return nil
	}
	return s.limiter.WaitN(ctx, n)
}

func (s *RateLimitedSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
