// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package hwsim

import (
	"encoding/binary"
	"math"
	"os"
	"sync"
	"time"

	"github.com/wavecycle/wavecycle/audio"
)

// ToneSource simulates an I2S microphone producing a sine tone. Samples
// accrue at the real time byte rate, like DMA memory filling behind the
// bus. Read returns 0 when nothing has accrued yet, matching the
// non blocking read contract of the hardware source.
type ToneSource struct {
	Freq   float64
	Volume float64

	format audio.Format

	mu       sync.Mutex
	start    time.Time
	consumed uint64
	closed   bool

	now func() time.Time
}

func NewToneSource(format audio.Format, freq float64) *ToneSource {
	return &ToneSource{
		Freq:   freq,
		Volume: 0.3,
		format: format,
		now:    time.Now,
	}
}

func (s *ToneSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, os.ErrClosed
	}
	if s.start.IsZero() {
		s.start = s.now()
		return 0, nil
	}

	frameSize := s.format.BytesPerFrame()
	elapsed := s.now().Sub(s.start)
	produced := uint64(elapsed.Seconds() * float64(s.format.ByteRate()))
	produced -= produced % uint64(frameSize)

	avail := int(produced - s.consumed)
	if avail > len(p) {
		avail = len(p)
	}
	avail -= avail % frameSize
	if avail <= 0 {
		return 0, nil
	}

	s.generate(p[:avail])
	s.consumed += uint64(avail)
	return avail, nil
}

// generate fills p with the next sine wave frames, all channels carrying
// the same signal.
func (s *ToneSource) generate(p []byte) {
	frameSize := s.format.BytesPerFrame()
	sampleSize := s.format.BitDepth / 8
	frame := s.consumed / uint64(frameSize)

	for off := 0; off < len(p); off += frameSize {
		t := float64(frame) / float64(s.format.SampleRate)
		sample := s.Volume * math.Sin(2*math.Pi*s.Freq*t)

		for ch := 0; ch < s.format.NumChannels(); ch++ {
			pos := off + ch*sampleSize
			switch s.format.BitDepth {
			case 16:
				binary.LittleEndian.PutUint16(p[pos:], uint16(int16(sample*math.MaxInt16)))
			case 32:
				binary.LittleEndian.PutUint32(p[pos:], uint32(int32(sample*math.MaxInt32)))
			}
		}
		frame++
	}
}

func (s *ToneSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
