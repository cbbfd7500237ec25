// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// memStorage is an in-memory Storage with mount accounting and fault
// injection.
type memStorage struct {
	mu       sync.Mutex
	files    map[string]*memFileData
	mounted  bool
	mounts   int
	unmounts int

	mountErr  error
	createErr error
	openErr   error
}

type memFileData struct {
	data []byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string]*memFileData{}}
}

func (s *memStorage) Mount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mountErr != nil {
		return s.mountErr
	}
	if s.mounted {
		return fmt.Errorf("already mounted")
	}
	s.mounted = true
	s.mounts++
	return nil
}

func (s *memStorage) Unmount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return fmt.Errorf("not mounted")
	}
	s.mounted = false
	s.unmounts++
	return nil
}

func (s *memStorage) Create(name string) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if !s.mounted {
		return nil, fmt.Errorf("not mounted")
	}
	fd := &memFileData{}
	s.files[name] = fd
	return &memFile{fd: fd}, nil
}

func (s *memStorage) Open(name string) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	if !s.mounted {
		return nil, fmt.Errorf("not mounted")
	}
	fd, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", name)
	}
	return &memFile{fd: fd}, nil
}

func (s *memStorage) isMounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

func (s *memStorage) fileBytes(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	fd, ok := s.files[name]
	if !ok {
		return nil
	}
	out := make([]byte, len(fd.data))
	copy(out, fd.data)
	return out
}

type memFile struct {
	fd  *memFileData
	pos int64

	writeErr error
}

func (f *memFile) Read(p []byte) (int, error) {
	if f.pos >= int64(len(f.fd.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.fd.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	end := f.pos + int64(len(p))
	if end > int64(len(f.fd.data)) {
		grown := make([]byte, end)
		copy(grown, f.fd.data)
		f.fd.data = grown
	}
	copy(f.fd.data[f.pos:end], p)
	f.pos = end
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		base = int64(len(f.fd.data))
	default:
		return 0, fmt.Errorf("bad whence %d", whence)
	}
	if base+offset < 0 {
		return 0, fmt.Errorf("negative seek")
	}
	f.pos = base + offset
	return f.pos, nil
}

func (f *memFile) Close() error {
	return nil
}

// scriptSource replays a fixed sequence of read results. A step with n > 0
// delivers that many bytes, all set to the step index, spread over as many
// reads as the buffer capacity requires. A step may carry an error instead.
// Past the script every read reports no data.
type scriptSource struct {
	mu     sync.Mutex
	steps  []scriptStep
	idx    int
	closed bool
}

type scriptStep struct {
	n   int
	err error
}

func (s *scriptSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.steps) {
		return 0, nil
	}
	step := &s.steps[s.idx]
	if step.err != nil {
		s.idx++
		return 0, step.err
	}
	n := step.n
	if n > len(p) {
		n = len(p)
	}
	fill := byte(s.idx)
	step.n -= n
	if step.n == 0 {
		s.idx++
	}
	for i := 0; i < n; i++ {
		p[i] = fill
	}
	return n, nil
}

func (s *scriptSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *scriptSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// collectSink records every write and drains instantly. onWrite, when set,
// observes the running byte total, handy for cancelling mid playback.
type collectSink struct {
	mu      sync.Mutex
	writes  []int
	total   int
	drains  int
	closed  bool
	onWrite func(total int)

	writeErr error
}

func (s *collectSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return 0, err
	}
	s.writes = append(s.writes, len(p))
	s.total += len(p)
	total := s.total
	cb := s.onWrite
	s.mu.Unlock()

	if cb != nil {
		cb(total)
	}
	return len(p), nil
}

func (s *collectSink) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drains++
	return ctx.Err()
}

func (s *collectSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *collectSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *collectSink) writeSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.writes))
	copy(out, s.writes)
	return out
}
