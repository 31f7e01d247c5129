// Buffer pooling for program rendering
//
// Rendering a full section program builds hundreds of G-code lines in
// quick succession; pooling the byte buffers keeps that off the
// garbage collector.
//
// Usage:
//
//	buf := pool.GetByteBuffer()
//	defer pool.PutByteBuffer(buf)
//	// render into buf...
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package pool

import (
	"sync"
)

// ByteBuffer is a pooled append-only byte buffer.
type ByteBuffer struct {
	buf []byte
}

var byteBufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{
			// A generated G-code line runs about 40-60 bytes
			buf: make([]byte, 0, 64),
		}
	},
}

// GetByteBuffer gets an empty buffer from the pool.
func GetByteBuffer() *ByteBuffer {
	b := byteBufferPool.Get().(*ByteBuffer)
	b.buf = b.buf[:0]
	return b
}

// PutByteBuffer returns a buffer to the pool. Oversized buffers are
// dropped so one whole-program render doesn't pin its memory.
func PutByteBuffer(b *ByteBuffer) {
	if b == nil || cap(b.buf) > 64*1024 {
		return
	}
	byteBufferPool.Put(b)
}

// Bytes returns the buffer contents.
func (b *ByteBuffer) Bytes() []byte {
	return b.buf
}

// Len returns the buffer length.
func (b *ByteBuffer) Len() int {
	return len(b.buf)
}

// Reset clears the buffer, keeping its capacity.
func (b *ByteBuffer) Reset() {
	b.buf = b.buf[:0]
}

// Write appends bytes; it never fails.
func (b *ByteBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *ByteBuffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends a string.
func (b *ByteBuffer) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// String returns the buffer contents as a string.
func (b *ByteBuffer) String() string {
	return string(b.buf)
}
