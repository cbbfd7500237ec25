// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the fixed RIFF/WAVE/fmt/data prologue size. Sample data
	// starts immediately after.
	HeaderSize = 44
	// DataOffset is the first byte of the data chunk payload.
	DataOffset = HeaderSize

	fmtChunkSize  = 16
	wavFormatLPCM = 1
)

// BuildHeader builds the 44 byte WAV header for an LPCM stream holding
// totalSamples samples per channel. It is pure, does no IO.
//
// Declared data size is totalSamples * channels * bitDepth/8 and declared
// file size is data size + 36. All integer fields are little endian.
func BuildHeader(f Format, totalSamples uint32) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	numChannels := f.NumChannels()
	bitsPerSample := f.BitDepth
	sampleRate := f.SampleRate
	dataSize := totalSamples * uint32(numChannels) * uint32(bitsPerSample) / 8

	header := make([]byte, HeaderSize)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], dataSize+HeaderSize-8)
	copy(header[8:12], []byte("WAVE"))

	// fmt subchunk
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatLPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(header[24:28], sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], sampleRate*uint32(bitsPerSample)*uint32(numChannels)/8) // Byte rate calculation
	binary.LittleEndian.PutUint16(header[32:34], uint16(bitsPerSample*numChannels/8))                    // Block align
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	// data chunk
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], dataSize)
	return header, nil
}

// HeaderDataSize reads the declared data chunk size back from a header.
func HeaderDataSize(header []byte) (uint32, error) {
	if len(header) < HeaderSize {
		return 0, fmt.Errorf("header too short: %d bytes", len(header))
	}
	return binary.LittleEndian.Uint32(header[40:44]), nil
}
