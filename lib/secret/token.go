// Copyright 2026 The LoopMeIn Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds Slack tokens in memory that is locked against
// swap and excluded from core dumps.
//
// The backing memory comes from an anonymous mmap region outside the
// Go heap, so the garbage collector never copies or relocates it.
// Tokens are read from the process environment once at startup and
// live in a Token for the lifetime of the process; String converts to
// a heap string only at the Authorization-header boundary.
package secret

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Token holds one bearer token in mlock-backed memory. Must not be
// copied after creation. Close zeros and releases the memory; reads
// after Close panic.
type Token struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// FromEnv reads the named environment variable into a Token. Returns
// an error when the variable is unset or empty — both tokens are
// required for the process to do anything useful, so callers treat
// this as fatal.
func FromEnv(name string) (*Token, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil, fmt.Errorf("secret: environment variable %s is not set", name)
	}
	return fromBytes([]byte(value))
}

// fromBytes copies source into a fresh protected region and zeros the
// caller's slice.
func fromBytes(source []byte) (*Token, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: empty token")
	}

	// Anonymous memory outside the Go heap.
	data, err := unix.Mmap(-1, 0, len(source), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}

	// Keep the token out of swap.
	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}

	// Keep the token out of core dumps.
	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP): %w", err)
	}

	copy(data, source)
	for i := range source {
		source[i] = 0
	}

	return &Token{data: data, length: len(data)}, nil
}

// String returns the token as a string. The result is a short-lived
// heap copy; use it directly in a header value and let it go out of
// scope. Panics if the token has been closed.
func (t *Token) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		panic("secret: read from closed token")
	}
	return string(t.data[:t.length])
}

// Len returns the token length in bytes.
func (t *Token) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.length
}

// Close zeros the token and releases the protected memory. Idempotent.
func (t *Token) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	for i := range t.data {
		t.data[i] = 0
	}

	var firstError error
	if err := unix.Munlock(t.data); err != nil {
		firstError = fmt.Errorf("secret: munlock: %w", err)
	}
	if err := unix.Munmap(t.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap: %w", err)
	}
	t.data = nil
	return firstError
}
