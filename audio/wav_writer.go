// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"io"
)

// WavWriter writes an LPCM stream behind a WAV header. The header is built
// once from the expected total sample count and never rewritten, so if the
// stream is cut short the declared data length overstates the payload.
// Callers that need exact accounting read DataSize after streaming.
type WavWriter struct {
	Format       Format
	TotalSamples uint32

	W             io.WriteSeeker
	headerWritten bool
	dataSize      int64
}

func NewWavWriter(w io.WriteSeeker, format Format, totalSamples uint32) *WavWriter {
	return &WavWriter{
		Format:       format,
		TotalSamples: totalSamples,
		W:            w,
	}
}

// WriteHeader writes the 44 byte header. Called lazily by Write when not
// done explicitly.
func (ww *WavWriter) WriteHeader() error {
	if ww.headerWritten {
		return nil
	}
	header, err := BuildHeader(ww.Format, ww.TotalSamples)
	if err != nil {
		return err
	}
	if _, err := ww.W.Write(header); err != nil {
		return err
	}
	ww.headerWritten = true
	return nil
}

func (ww *WavWriter) Write(audio []byte) (int, error) {
	if !ww.headerWritten {
		if err := ww.WriteHeader(); err != nil {
			return 0, err
		}
	}
	n, err := ww.W.Write(audio)
	ww.dataSize += int64(n)
	return n, err
}

// DataSize is number of sample bytes written so far, header excluded.
func (ww *WavWriter) DataSize() int64 {
	return ww.dataSize
}
