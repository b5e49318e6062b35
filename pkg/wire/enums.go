// Package wire implements the CDP Near Share frame format: length-prefixed
// transport framing, the CommonHeader, and the primitive value encodings
// used throughout the protocol.
package wire

// MessageType identifies the kind of payload a CommonHeader introduces.
type MessageType uint32

const (
	MessageTypeConnect             MessageType = 0
	MessageTypeSession             MessageType = 1
	MessageTypeControl             MessageType = 2
	MessageTypeAck                 MessageType = 3
	MessageTypeReliabilityResponse MessageType = 4
)

// String returns a human-readable name for the message type.
func (t MessageType) String() string {
	switch t {
	case MessageTypeConnect:
		return "Connect"
	case MessageTypeSession:
		return "Session"
	case MessageTypeControl:
		return "Control"
	case MessageTypeAck:
		return "Ack"
	case MessageTypeReliabilityResponse:
		return "ReliabilityResponse"
	default:
		return "Unknown"
	}
}

// HeaderFlags is a bitset carried in every CommonHeader.
type HeaderFlags uint32

const (
	// FlagShouldAck asks the receiver to emit a standalone Ack frame.
	FlagShouldAck HeaderFlags = 1 << 0

	// FlagSessionHost names the session-host flag. The host flag that the
	// header actually carries is the top bit of the remote half of
	// SessionId (SetSessionHost); nothing in this module sets or reads
	// FlagSessionHost.
	FlagSessionHost HeaderFlags = 1 << 1
)

// Has reports whether all bits in mask are set.
func (f HeaderFlags) Has(mask HeaderFlags) bool {
	return f&mask == mask
}

// AdditionalHeaderType tags an entry in the additional-headers table.
type AdditionalHeaderType uint8

const (
	// AdditionalHeaderReplyTo carries the RequestID a reply correlates to.
	AdditionalHeaderReplyTo AdditionalHeaderType = 1

	// AdditionalHeaderCorrelationVector carries the Near Share correlation
	// vector prefix; stripped before the application sees the header.
	AdditionalHeaderCorrelationVector AdditionalHeaderType = 2

	// AdditionalHeaderStartChannelCompat is the fixed compatibility
	// header required on StartChannelResponse (spec wire constant).
	AdditionalHeaderStartChannelCompat AdditionalHeaderType = 129

	// additionalHeaderEnd terminates the additional-headers table on the wire.
	additionalHeaderEnd AdditionalHeaderType = 0xFF
)

// Curve identifies the elliptic curve announced in a ConnectRequest's
// cryptor parameters. The protocol has one stable value (spec.md §6).
type Curve uint16

const (
	// CurveNISTP256 is the only curve this implementation (and the
	// reference implementation) speaks.
	CurveNISTP256 Curve = 0
)
