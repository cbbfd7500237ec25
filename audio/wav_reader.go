// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"io"
	"time"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// WavReader walks RIFF chunks until the data chunk and then exposes raw PCM.
// Streaming playback does not need it, a playback cursor just seeks to
// DataOffset, but it is the strict path for inspecting recordings.
type WavReader struct {
	riff.Parser
	chunkData *riff.Chunk
	DataSize  int
}

func NewWavReader(r io.Reader) *WavReader {
	parser := riff.New(r)
	return &WavReader{Parser: *parser}
}

// ReadHeaders reads until data chunk
func (r *WavReader) ReadHeaders() error {
	if err := r.readFmtChunk(); err != nil {
		return err
	}
	return r.readDataChunk()
}

func (r *WavReader) readFmtChunk() error {
	if err := r.Parser.ParseHeaders(); err != nil {
		return err
	}
	for {
		chunk, err := r.NextChunk()
		if err != nil {
			return err
		}

		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}
		return chunk.DecodeWavHeader(&r.Parser)
	}
}

func (r *WavReader) readDataChunk() error {
	for {
		chunk, err := r.NextChunk()
		if err != nil {
			return err
		}

		if chunk.ID != riff.DataFormatID {
			chunk.Drain()
			continue
		}
		r.chunkData = chunk
		r.DataSize = chunk.Size
		return nil
	}
}

// Read returns PCM underneath
func (r *WavReader) Read(buf []byte) (n int, err error) {
	if r.chunkData == nil {
		if err := r.ReadHeaders(); err != nil {
			return 0, err
		}
	}
	return r.chunkData.Read(buf)
}

// FileInfo describes a recorded WAV file.
type FileInfo struct {
	Format    Format
	DataBytes uint32
	Duration  time.Duration
}

// ReadFileInfo decodes the format and duration of a WAV stream.
func ReadFileInfo(r io.ReadSeeker) (FileInfo, error) {
	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return FileInfo{}, err
	}

	dur, err := dec.Duration()
	if err != nil {
		return FileInfo{}, err
	}

	info := FileInfo{
		Format: Format{
			SampleRate: dec.SampleRate,
			BitDepth:   int(dec.BitDepth),
			Layout:     ChannelLayout(dec.NumChans),
		},
		Duration: dur,
	}

	// The decoder does not expose the raw data chunk size, walk the chunks
	// again for the exact payload length.
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FileInfo{}, err
	}
	wr := NewWavReader(r)
	if err := wr.ReadHeaders(); err != nil {
		return FileInfo{}, err
	}
	info.DataBytes = uint32(wr.DataSize)
	return info, nil
}
