// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"context"
	"errors"
	"fmt"
)

// HardwareError is a source or sink failure mid stream. It is surfaced to
// the owning pipeline only and triggers that pipeline's finalizing path.
type HardwareError struct {
	Op  string
	Err error
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("hardware %s: %v", e.Op, e.Err)
}

func (e *HardwareError) Unwrap() error {
	return e.Err
}

// StorageError is a mount, open, read, write or seek failure. Same
// containment policy as HardwareError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsUserInterrupt reports whether err is an external cancellation rather
// than a fault. Interrupts run the same cleanup path but are not logged
// as errors.
func IsUserInterrupt(err error) bool {
	return errors.Is(err, context.Canceled)
}
