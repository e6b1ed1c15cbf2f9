package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire format: [4 bytes length][4 bytes request id][4 bytes type][body]\x00\x00
// All multi-byte integers are little-endian 32-bit signed.

var (
	// ErrIncomplete reports that the buffer does not yet hold a full frame.
	// The caller should read more bytes and decode again; no input is
	// consumed.
	ErrIncomplete = errors.New("incomplete frame")

	// ErrMalformed reports a frame whose declared length cannot be valid.
	// The stream is desynced and cannot be safely resynchronized.
	ErrMalformed = errors.New("malformed frame")
)

// Encode serializes a frame for the given request id, packet type and body.
// Bodies longer than MaxBodySize are truncated at the boundary; typical
// commands are far below it.
func Encode(requestID, packetType int32, body []byte) []byte {
	if len(body) > MaxBodySize {
		body = body[:MaxBodySize]
	}

	buf := GetBufferWithSize(len(body) + frameOverhead + 4)
	defer PutBuffer(buf)

	var header [12]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(len(body)+frameOverhead))
	binary.LittleEndian.PutUint32(header[4:], uint32(requestID))
	binary.LittleEndian.PutUint32(header[8:], uint32(packetType))

	buf.Write(header[:])
	buf.Write(body)
	buf.Write([]byte{0, 0})

	// The pooled buffer is reused; hand back a copy.
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// Decode parses the leading frame out of buf and reports how many bytes it
// consumed. It never blocks and never assumes a full frame is present:
// when fewer than 4+length bytes are buffered it returns ErrIncomplete
// with zero consumed, so partial TCP segments can simply be appended and
// decoded again.
func Decode(buf []byte) (Frame, int, error) {
	if len(buf) < 4 {
		return Frame{}, 0, ErrIncomplete
	}

	length := int32(binary.LittleEndian.Uint32(buf))
	if length < frameOverhead || length > MaxFrameLength {
		return Frame{}, 0, fmt.Errorf("%w: declared length %d", ErrMalformed, length)
	}

	total := 4 + int(length)
	if len(buf) < total {
		return Frame{}, 0, ErrIncomplete
	}

	f := Frame{
		RequestID: int32(binary.LittleEndian.Uint32(buf[4:])),
		Type:      int32(binary.LittleEndian.Uint32(buf[8:])),
	}

	bodyLen := int(length) - frameOverhead
	if bodyLen > 0 {
		f.Body = make([]byte, bodyLen)
		copy(f.Body, buf[12:12+bodyLen])
	}

	if buf[total-2] != 0 || buf[total-1] != 0 {
		return Frame{}, 0, fmt.Errorf("%w: missing body terminators", ErrMalformed)
	}

	return f, total, nil
}
