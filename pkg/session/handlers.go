package session

import (
	"fmt"

	"github.com/cdpnear/nearshare/pkg/channel"
	"github.com/cdpnear/nearshare/pkg/cryptor"
	"github.com/cdpnear/nearshare/pkg/platform"
	"github.com/cdpnear/nearshare/pkg/wire"
)

// eHResultNotImplemented is the HRESULT UpgradeFailure always carries: this
// receiver never accepts a transport upgrade (spec.md §4.3 Non-goals).
const eHResultNotImplemented uint32 = 0x80004001

// handleConnect dispatches a wire.MessageTypeConnect body by its leading
// ConnectionMessageType tag.
func (s *Session) handleConnect(state State, header *wire.CommonHeader, body []byte) error {
	r := wire.NewReader(body)
	msgType, err := connectionMessageType(r)
	if err != nil {
		return err
	}

	switch msgType {
	case ConnectRequest:
		return s.handleConnectRequest(state, header, r)
	case DeviceAuthRequest:
		return s.handleDeviceAuthRequest(state, header, r, false)
	case UserDeviceAuthRequest:
		return s.handleDeviceAuthRequest(state, header, r, true)
	case UpgradeRequest:
		return s.handleUpgradeRequest(header)
	case AuthDoneRequest:
		return s.handleAuthDoneRequest(state, header)
	case DeviceInfoMessage:
		return s.handleDeviceInfoMessage(header)
	default:
		return ErrUnexpectedMessage
	}
}

func (s *Session) handleConnectRequest(state State, header *wire.CommonHeader, r *wire.Reader) error {
	if state != StateAwaitingConnectRequest {
		return ErrUnexpectedMessage
	}

	req, err := decodeConnectRequest(r)
	if err != nil {
		return err
	}

	keys, err := cryptor.DeriveKeys(s.localKeys, req.PublicKey)
	if err != nil {
		return fmt.Errorf("session: derive keys: %w", err)
	}

	s.mu.Lock()
	s.remoteNonce = req.Nonce
	s.remotePublicKey = req.PublicKey
	s.crypt = cryptor.New(keys)
	s.mu.Unlock()

	respBody := encodeConnectResponse(ConnectResultPending, connectBody{
		HMACSize:     cryptor.HMACSize,
		FragmentSize: req.FragmentSize,
		Nonce:        s.localNonce,
		PublicKey:    s.localKeys.PublicKey(),
	})
	outHeader := s.outgoingHeader(wire.MessageTypeConnect, header.RequestID)
	if err := s.send(outHeader, respBody); err != nil {
		return err
	}

	// spec.md §4.3: every message after ConnectResponse is encrypted.
	s.mu.Lock()
	s.encrypted = true
	s.state = StateAwaitingAuth
	s.mu.Unlock()
	return nil
}

func (s *Session) handleDeviceAuthRequest(state State, header *wire.CommonHeader, r *wire.Reader, user bool) error {
	if state != StateAwaitingAuth {
		return ErrUnexpectedMessage
	}

	req, err := decodeDeviceAuth(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	remoteNonce := s.remoteNonce
	localNonce := s.localNonce
	s.mu.Unlock()

	ok, err := verifyThumbprint(remoteNonce, localNonce, req.Certificate, req.Thumbprint)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuth
	}

	respThumb, err := computeThumbprint(localNonce, remoteNonce, s.localCertificate)
	if err != nil {
		return err
	}

	respType := DeviceAuthResponse
	if user {
		respType = UserDeviceAuthResponse
	}
	respBody := encodeDeviceAuth(respType, deviceAuthBody{
		Certificate: s.localCertificate,
		Thumbprint:  respThumb,
	})
	outHeader := s.outgoingHeader(wire.MessageTypeConnect, header.RequestID)
	if err := s.send(outHeader, respBody); err != nil {
		return err
	}

	s.mu.Lock()
	s.remoteCertificate = req.Certificate
	if user {
		s.sawUserAuth = true
	} else {
		s.sawDeviceAuth = true
	}
	bothSeen := s.sawDeviceAuth && s.sawUserAuth
	if bothSeen {
		s.state = StateAwaitingAuthDone
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) handleUpgradeRequest(header *wire.CommonHeader) error {
	respBody := encodeUpgradeFailure(eHResultNotImplemented)
	outHeader := s.outgoingHeader(wire.MessageTypeConnect, header.RequestID)
	return s.send(outHeader, respBody)
}

func (s *Session) handleAuthDoneRequest(state State, header *wire.CommonHeader) error {
	if state != StateAwaitingAuthDone {
		return ErrUnexpectedMessage
	}

	respBody := encodeAuthDoneResponse(0)
	outHeader := s.outgoingHeader(wire.MessageTypeConnect, header.RequestID)
	if err := s.send(outHeader, respBody); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateEstablished
	s.mu.Unlock()
	return nil
}

func (s *Session) handleDeviceInfoMessage(header *wire.CommonHeader) error {
	respBody := encodeDeviceInfoResponse()
	outHeader := s.outgoingHeader(wire.MessageTypeConnect, header.RequestID)
	return s.send(outHeader, respBody)
}

// handleControl dispatches a wire.MessageTypeControl body by its leading
// ControlMessageType tag. Only valid once a session is Established (channels
// are a post-handshake concept, spec.md §4.5).
func (s *Session) handleControl(state State, header *wire.CommonHeader, body []byte) error {
	if state != StateEstablished {
		return ErrUnexpectedMessage
	}

	r := wire.NewReader(body)
	msgType, err := controlMessageType(r)
	if err != nil {
		return err
	}

	switch msgType {
	case StartChannelRequest:
		return s.handleStartChannelRequest(header, r)
	default:
		return ErrUnexpectedMessage
	}
}

func (s *Session) handleStartChannelRequest(header *wire.CommonHeader, r *wire.Reader) error {
	req, err := decodeStartChannelRequest(r)
	if err != nil {
		return err
	}

	write := func(h *wire.CommonHeader, b []byte) error {
		s.stampHeader(h)
		return s.send(h, b)
	}
	closeFn := func() error {
		s.Dispose(nil)
		return nil
	}

	var result uint8
	var channelID uint64
	ch, err := s.channels.Open(s.channelFactories, req.AppID, req.AppName, write, closeFn)
	if err != nil {
		s.logEvent(platform.LevelWarn, "start channel %q/%q failed: %v", req.AppID, req.AppName, err)
		result = 1
	} else {
		channelID = ch.ID
	}

	respBody := encodeStartChannelResponse(result, channelID)
	outHeader := s.outgoingHeader(wire.MessageTypeControl, 0)
	outHeader.SetReplyTo(header.RequestID)
	outHeader.AdditionalHeaders = append(outHeader.AdditionalHeaders, wire.AdditionalHeader{
		Type:  wire.AdditionalHeaderStartChannelCompat,
		Bytes: startChannelCompatHeaderBytes,
	})
	return s.send(outHeader, respBody)
}

// handleSessionMessage reassembles a wire.MessageTypeSession fragment and,
// once the message is complete, hands it to the addressed channel on a
// background goroutine so the reader never blocks on application logic
// (spec.md §5).
func (s *Session) handleSessionMessage(state State, header *wire.CommonHeader, body []byte) error {
	if state != StateEstablished {
		return ErrUnexpectedMessage
	}

	msg := s.reassembly.AddFragment(header.SequenceNumber, header.FragmentCount, body)
	if !msg.IsComplete() {
		return nil
	}

	ch, ok := s.channels.Get(header.ChannelID)
	if !ok {
		s.reassembly.Remove(header.SequenceNumber)
		return channel.ErrUnknownChannel
	}

	complete := msg.Bytes()
	header.RemoveAdditionalHeader(wire.AdditionalHeaderCorrelationVector)
	go func() {
		defer s.reassembly.Remove(header.SequenceNumber)
		if err := ch.Dispatch(header, complete); err != nil {
			s.logEvent(platform.LevelError, "channel %d dispatch error: %v", ch.ID, err)
			s.Dispose(err)
		}
	}()
	return nil
}
