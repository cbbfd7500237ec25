// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat is returned when a Format can not describe a PCM stream.
// It is fatal. No stream or session should be created from such format.
var ErrInvalidFormat = errors.New("invalid audio format")

type ChannelLayout uint8

const (
	Mono ChannelLayout = iota + 1
	Stereo
)

func (l ChannelLayout) Channels() int {
	return int(l)
}

func (l ChannelLayout) String() string {
	switch l {
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	}
	return fmt.Sprintf("layout(%d)", int(l))
}

// Format describes raw LPCM stream. Samples are little endian, channels
// interleaved frame major (left right left right for stereo).
type Format struct {
	SampleRate uint32
	BitDepth   int
	Layout     ChannelLayout
}

func (f Format) Validate() error {
	if f.SampleRate == 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidFormat)
	}
	if f.BitDepth != 16 && f.BitDepth != 32 {
		return fmt.Errorf("%w: bit depth must be 16 or 32, got %d", ErrInvalidFormat, f.BitDepth)
	}
	if f.Layout != Mono && f.Layout != Stereo {
		return fmt.Errorf("%w: unknown channel layout %d", ErrInvalidFormat, f.Layout)
	}
	return nil
}

func (f Format) NumChannels() int {
	return f.Layout.Channels()
}

// BytesPerFrame is one sample per channel.
func (f Format) BytesPerFrame() int {
	return f.BitDepth / 8 * f.NumChannels()
}

// ByteRate is number of sample bytes produced per second of audio.
func (f Format) ByteRate() int {
	return int(f.SampleRate) * f.BytesPerFrame()
}

// SamplesForDuration returns total sample count (per channel) for duration.
func (f Format) SamplesForDuration(d time.Duration) uint32 {
	return uint32(uint64(f.SampleRate) * uint64(d) / uint64(time.Second))
}

// BytesForDuration returns total sample bytes for duration of audio.
func (f Format) BytesForDuration(d time.Duration) uint64 {
	return uint64(f.SamplesForDuration(d)) * uint64(f.BytesPerFrame())
}

func (f Format) String() string {
	return fmt.Sprintf("%dhz/%dbit/%s", f.SampleRate, f.BitDepth, f.Layout)
}
