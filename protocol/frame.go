package protocol

// Packet types
//
// The remote console protocol reuses type 2 for both an outbound exec
// command and the auth-success response. The request id, not the packet
// type, is what disambiguates an auth result: a response carrying request
// id -1 means the password was rejected, anything else means success.
const (
	TypeResponseValue int32 = 0 // Command output fragment
	TypeExecCommand   int32 = 2 // Client command request
	TypeAuthResponse  int32 = 2 // Auth handshake reply (id -1 on failure)
	TypeAuth          int32 = 3 // Auth handshake request
)

// AuthFailedID is the request id the server echoes when authentication
// fails, regardless of the id the client sent.
const AuthFailedID int32 = -1

// MaxBodySize is the soft cap on an outbound frame body. Commands longer
// than this are truncated at encode time. Server responses may legitimately
// exceed it and arrive split across multiple response frames.
const MaxBodySize = 4096

// frame overhead beyond the body: request id (4) + type (4) + body
// terminator (1) + trailing pad terminator (1).
const frameOverhead = 10

// MaxFrameLength bounds the declared length field on decode. A length
// beyond this cannot be a legitimate frame and indicates stream desync.
const MaxFrameLength = 1 << 20

// Frame is one length-prefixed unit of the wire protocol. All integer
// fields are little-endian int32 on the wire; the body is text followed
// by a null terminator and a single trailing null pad byte.
type Frame struct {
	RequestID int32
	Type      int32
	Body      []byte
}

// WireLength returns the value of the frame's length prefix, i.e. the byte
// count of everything after the prefix itself.
func (f Frame) WireLength() int32 {
	return int32(len(f.Body) + frameOverhead)
}
