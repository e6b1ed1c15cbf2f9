package protocol

import (
	"bytes"
	"sync"
)

// MaxPooledBuffer bounds the buffers kept in the pool. Encode scratch
// space for typical command frames is tiny, but a large server response
// echoed through tests should not pin memory forever.
const MaxPooledBuffer = 64 * 1024

// bufferPool reuses encode scratch buffers to reduce allocations on the
// per-command hot path.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves a buffer from the pool, reset and ready for use.
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// GetBufferWithSize retrieves a pooled buffer grown to the given size hint.
func GetBufferWithSize(sizeHint int) *bytes.Buffer {
	buf := GetBuffer()
	if sizeHint > 0 && buf.Cap() < sizeHint {
		buf.Grow(sizeHint)
	}
	return buf
}

// PutBuffer returns a buffer to the pool. Oversized buffers are dropped to
// prevent memory bloat.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	if buf.Cap() > MaxPooledBuffer {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
