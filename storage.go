// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is an open file on mounted storage with ordinary sequential file
// semantics. Seek positions are byte exact.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Storage is the mount lifecycle of the recording medium, an SD card in
// the reference hardware. A pipeline mounts on entry and unmounts in its
// finalizer. The two pipelines never hold the mount concurrently, capture
// owns it while recording and playback afterwards.
type Storage interface {
	Mount() error
	Unmount() error
	Create(name string) (File, error)
	Open(name string) (File, error)
}

// DirStorage serves a host directory as the storage medium.
type DirStorage struct {
	Dir string

	mounted bool
}

func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{Dir: dir}
}

func (s *DirStorage) Mount() error {
	if s.mounted {
		return fmt.Errorf("storage already mounted at %s", s.Dir)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	s.mounted = true
	return nil
}

func (s *DirStorage) Unmount() error {
	if !s.mounted {
		return fmt.Errorf("storage not mounted")
	}
	s.mounted = false
	return nil
}

func (s *DirStorage) Create(name string) (File, error) {
	if !s.mounted {
		return nil, fmt.Errorf("storage not mounted")
	}
	return os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
}

func (s *DirStorage) Open(name string) (File, error) {
	if !s.mounted {
		return nil, fmt.Errorf("storage not mounted")
	}
	return os.Open(filepath.Join(s.Dir, name))
}
