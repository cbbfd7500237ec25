// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import "context"

// Source is the capture side of the hardware audio transport, typically an
// I2S microphone behind a DMA buffer.
type Source interface {
	// Read copies up to len(p) sample bytes into p. n == 0 with a nil error
	// means no samples are ready yet. That is not an error, the caller must
	// yield and retry.
	Read(p []byte) (n int, err error)
	Close() error
}

// Sink is the playback side, typically an I2S DAC or amplifier. The sink's
// accept rate paces the playback loop, not the storage read rate.
type Sink interface {
	Write(p []byte) (n int, err error)
	// Drain suspends until the sink has consumed everything written since
	// the previous drain.
	Drain(ctx context.Context) error
	Close() error
}
