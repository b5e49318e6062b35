package session

import (
	"github.com/cdpnear/nearshare/pkg/cryptor"
	"github.com/cdpnear/nearshare/pkg/wire"
)

// connectBody is the common shape of ConnectRequest/ConnectResponse: the
// cryptor's curve/hmac/fragment-size announcement plus the sender's nonce
// and ECDH public point (spec.md §4.3).
type connectBody struct {
	HMACSize     uint16
	FragmentSize uint32
	Nonce        []byte
	PublicKey    []byte
}

func encodeConnectRequest(b connectBody) []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(ConnectRequest))
	w.PutUint16(uint16(wire.CurveNISTP256))
	w.PutUint16(b.HMACSize)
	w.PutUint32(b.FragmentSize)
	w.PutBytes(b.Nonce)
	w.PutBytes(b.PublicKey)
	return w.Bytes()
}

func decodeConnectRequest(r *wire.Reader) (connectBody, error) {
	var b connectBody
	curve, err := r.Uint16()
	if err != nil {
		return b, ErrParse
	}
	if wire.Curve(curve) != wire.CurveNISTP256 {
		return b, ErrParse
	}
	if b.HMACSize, err = r.Uint16(); err != nil {
		return b, ErrParse
	}
	if b.FragmentSize, err = r.Uint32(); err != nil {
		return b, ErrParse
	}
	if b.Nonce, err = r.Bytes(NonceSize); err != nil {
		return b, ErrParse
	}
	if b.PublicKey, err = r.Bytes(cryptor.PublicKeySize); err != nil {
		return b, ErrParse
	}
	return b, nil
}

func encodeConnectResponse(result ConnectResult, b connectBody) []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(ConnectResponse))
	w.PutUint32(uint32(result))
	w.PutUint16(b.HMACSize)
	w.PutUint32(b.FragmentSize)
	w.PutBytes(b.Nonce)
	w.PutBytes(b.PublicKey)
	return w.Bytes()
}

// deviceAuthBody is shared by DeviceAuthRequest/Response and
// UserDeviceAuthRequest/Response: a certificate plus an HMAC-SHA256
// thumbprint proving both sides share the same nonce pair.
type deviceAuthBody struct {
	Certificate []byte
	Thumbprint  []byte
}

func encodeDeviceAuth(msgType ConnectionMessageType, b deviceAuthBody) []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(msgType))
	w.PutPayload(b.Certificate)
	w.PutBytes(b.Thumbprint)
	return w.Bytes()
}

func decodeDeviceAuth(r *wire.Reader) (deviceAuthBody, error) {
	var b deviceAuthBody
	cert, err := r.Payload()
	if err != nil {
		return b, ErrParse
	}
	thumb, err := r.Bytes(ThumbprintSize)
	if err != nil {
		return b, ErrParse
	}
	b.Certificate = cert
	b.Thumbprint = thumb
	return b, nil
}

func encodeUpgradeFailure(hresult uint32) []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(UpgradeFailure))
	w.PutUint32(hresult)
	return w.Bytes()
}

func encodeAuthDoneResponse(hresult uint32) []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(AuthDoneResponse))
	w.PutUint32(hresult)
	return w.Bytes()
}

func encodeDeviceInfoResponse() []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(DeviceInfoResponseMessage))
	return w.Bytes()
}

// connectionMessageType reads the leading sub-type tag off a
// wire.MessageTypeConnect body without consuming the rest of it.
func connectionMessageType(r *wire.Reader) (ConnectionMessageType, error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, ErrParse
	}
	return ConnectionMessageType(v), nil
}

// startChannelRequestBody is the Control-type payload opening a channel.
type startChannelRequestBody struct {
	AppID   string
	AppName string
}

func decodeStartChannelRequest(r *wire.Reader) (startChannelRequestBody, error) {
	var b startChannelRequestBody
	appID, err := r.StringUTF8()
	if err != nil {
		return b, ErrParse
	}
	appName, err := r.StringUTF8()
	if err != nil {
		return b, ErrParse
	}
	b.AppID = appID
	b.AppName = appName
	return b, nil
}

// startChannelCompatHeaderBytes is the fixed compatibility additional
// header required on every StartChannelResponse (spec.md §6 wire constant).
var startChannelCompatHeaderBytes = []byte{0x30, 0x00, 0x00, 0x01}

func encodeStartChannelResponse(result uint8, channelID uint64) []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(StartChannelResponse))
	w.PutUint8(result)
	w.PutUint64(channelID)
	return w.Bytes()
}

func controlMessageType(r *wire.Reader) (ControlMessageType, error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, ErrParse
	}
	return ControlMessageType(v), nil
}
