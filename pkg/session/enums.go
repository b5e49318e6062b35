// Package session implements the CDP Near Share session state machine: the
// per-peer Connect/Auth/AuthDone handshake, the cryptor it owns once key
// agreement completes, and the process-wide session registry (spec.md
// §4.3, §4.4).
package session

// State is a session's position in the Connect→Auth→AuthDone→Established
// lifecycle (spec.md §4.3).
type State int

const (
	StateAwaitingConnectRequest State = iota
	StateAwaitingAuth
	StateAwaitingAuthDone
	StateEstablished
	StateDisposed
)

// String returns a human-readable state name, used in log lines.
func (s State) String() string {
	switch s {
	case StateAwaitingConnectRequest:
		return "AwaitingConnectRequest"
	case StateAwaitingAuth:
		return "AwaitingAuth"
	case StateAwaitingAuthDone:
		return "AwaitingAuthDone"
	case StateEstablished:
		return "Established"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// ConnectionMessageType is the sub-type tag carried by the first four bytes
// of every wire.MessageTypeConnect body: the handshake messages exchanged
// before a session reaches StateEstablished.
type ConnectionMessageType uint32

const (
	ConnectRequest ConnectionMessageType = iota
	ConnectResponse
	DeviceAuthRequest
	DeviceAuthResponse
	UserDeviceAuthRequest
	UserDeviceAuthResponse
	UpgradeRequest
	UpgradeResponse
	UpgradeFailure
	AuthDoneRequest
	AuthDoneResponse
	DeviceInfoMessage
	DeviceInfoResponseMessage
)

// String returns a human-readable name, used in log lines.
func (t ConnectionMessageType) String() string {
	switch t {
	case ConnectRequest:
		return "ConnectRequest"
	case ConnectResponse:
		return "ConnectResponse"
	case DeviceAuthRequest:
		return "DeviceAuthRequest"
	case DeviceAuthResponse:
		return "DeviceAuthResponse"
	case UserDeviceAuthRequest:
		return "UserDeviceAuthRequest"
	case UserDeviceAuthResponse:
		return "UserDeviceAuthResponse"
	case UpgradeRequest:
		return "UpgradeRequest"
	case UpgradeResponse:
		return "UpgradeResponse"
	case UpgradeFailure:
		return "UpgradeFailure"
	case AuthDoneRequest:
		return "AuthDoneRequest"
	case AuthDoneResponse:
		return "AuthDoneResponse"
	case DeviceInfoMessage:
		return "DeviceInfoMessage"
	case DeviceInfoResponseMessage:
		return "DeviceInfoResponseMessage"
	default:
		return "Unknown"
	}
}

// ControlMessageType is the sub-type tag carried by the first four bytes of
// every wire.MessageTypeControl body: channel lifecycle management.
type ControlMessageType uint32

const (
	StartChannelRequest ControlMessageType = iota
	StartChannelResponse
)

// String returns a human-readable name, used in log lines.
func (t ControlMessageType) String() string {
	switch t {
	case StartChannelRequest:
		return "StartChannelRequest"
	case StartChannelResponse:
		return "StartChannelResponse"
	default:
		return "Unknown"
	}
}

// ConnectResult is the Result field of a ConnectResponse.
type ConnectResult uint32

const (
	// ConnectResultPending is the only Result value the receiver ever
	// sends: the handshake proceeds to Auth, it is not yet Established
	// (spec.md §4.3).
	ConnectResultPending ConnectResult = 0
	ConnectResultSuccess ConnectResult = 1
	ConnectResultFailure ConnectResult = 2
)

const (
	// NonceSize is the byte length of the Connect handshake's nonce
	// field. The nonces feed only the thumbprint computation in device
	// auth; the cryptor's keys come from the ECDH secret alone.
	NonceSize = 16

	// ThumbprintSize is the byte length of a device-auth thumbprint
	// (an HMAC-SHA256 tag).
	ThumbprintSize = 32
)
