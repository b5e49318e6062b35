package wire

// hostFlagBit is the topmost bit of the 32-bit remote half of SessionId,
// reserved to mark which side allocated the session.
const hostFlagBit uint32 = 1 << 31

// AdditionalHeader is one entry of the CommonHeader's tagged-value table.
// Entries whose Type is not in the known enum are preserved verbatim on
// write, per spec.
type AdditionalHeader struct {
	Type  AdditionalHeaderType
	Bytes []byte
}

// CommonHeader is the outer frame present on every CDP message.
type CommonHeader struct {
	Type              MessageType
	Flags             HeaderFlags
	SessionIDLocal    uint32
	SessionIDRemote   uint32
	SequenceNumber    uint32
	RequestID         uint32
	ChannelID         uint64
	FragmentIndex     uint16
	FragmentCount     uint16
	PayloadSize       uint32
	AdditionalHeaders []AdditionalHeader
}

// SessionID returns the transport-visible 64-bit value packing
// (local << 32) | remote, per spec's SessionId encoding.
func (h *CommonHeader) SessionID() uint64 {
	return uint64(h.SessionIDLocal)<<32 | uint64(h.SessionIDRemote)
}

// IsSessionHost reports whether the remote half's reserved host flag bit
// is set.
func (h *CommonHeader) IsSessionHost() bool {
	return h.SessionIDRemote&hostFlagBit != 0
}

// RemoteWithoutHostFlag returns the remote session id with the reserved
// host-flag bit masked off.
func (h *CommonHeader) RemoteWithoutHostFlag() uint32 {
	return h.SessionIDRemote &^ hostFlagBit
}

// SetSessionHost sets or clears the reserved host-flag bit on the remote half.
func (h *CommonHeader) SetSessionHost(host bool) {
	if host {
		h.SessionIDRemote |= hostFlagBit
	} else {
		h.SessionIDRemote &^= hostFlagBit
	}
}

// ReplyTo returns the RequestID carried in an AdditionalHeaderReplyTo entry,
// if present.
func (h *CommonHeader) ReplyTo() (uint32, bool) {
	for _, ah := range h.AdditionalHeaders {
		if ah.Type == AdditionalHeaderReplyTo && len(ah.Bytes) == 4 {
			r := NewReader(ah.Bytes)
			v, err := r.Uint32()
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

// SetReplyTo appends (or replaces) an AdditionalHeaderReplyTo entry carrying
// requestID.
func (h *CommonHeader) SetReplyTo(requestID uint32) {
	w := NewWriter()
	w.PutUint32(requestID)
	h.setAdditionalHeader(AdditionalHeaderReplyTo, w.Bytes())
}

// setAdditionalHeader appends (or replaces) an additional-header entry.
func (h *CommonHeader) setAdditionalHeader(t AdditionalHeaderType, b []byte) {
	for i := range h.AdditionalHeaders {
		if h.AdditionalHeaders[i].Type == t {
			h.AdditionalHeaders[i].Bytes = b
			return
		}
	}
	h.AdditionalHeaders = append(h.AdditionalHeaders, AdditionalHeader{Type: t, Bytes: b})
}

// RemoveAdditionalHeader strips any entry with the given type, used to drop
// the CorrelationVector header before handing a header to the application.
func (h *CommonHeader) RemoveAdditionalHeader(t AdditionalHeaderType) {
	out := h.AdditionalHeaders[:0]
	for _, ah := range h.AdditionalHeaders {
		if ah.Type != t {
			out = append(out, ah)
		}
	}
	h.AdditionalHeaders = out
}

// EncodeHeader serializes h, including its additional-headers table, but
// NOT the body that follows. PayloadSize must already be set by the caller
// (see EncodeFrame for the reserve/back-patch pattern).
func EncodeHeader(w *Writer, h *CommonHeader) {
	w.PutUint32(uint32(h.Type))
	w.PutUint32(uint32(h.Flags))
	w.PutUint32(h.SessionIDLocal)
	w.PutUint32(h.SessionIDRemote)
	w.PutUint32(h.SequenceNumber)
	w.PutUint32(h.RequestID)
	w.PutUint64(h.ChannelID)
	w.PutUint16(h.FragmentIndex)
	w.PutUint16(h.FragmentCount)
	w.PutUint32(h.PayloadSize)
	for _, ah := range h.AdditionalHeaders {
		w.PutUint8(uint8(ah.Type))
		w.PutVarint(uint64(len(ah.Bytes)))
		w.PutBytes(ah.Bytes)
	}
	w.PutUint8(uint8(additionalHeaderEnd))
}

// DecodeHeader parses a CommonHeader (including its additional-headers
// table) from r.
func DecodeHeader(r *Reader) (*CommonHeader, error) {
	h := &CommonHeader{}

	t, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	h.Type = MessageType(t)

	flags, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	h.Flags = HeaderFlags(flags)

	if h.SessionIDLocal, err = r.Uint32(); err != nil {
		return nil, err
	}
	if h.SessionIDRemote, err = r.Uint32(); err != nil {
		return nil, err
	}
	if h.SequenceNumber, err = r.Uint32(); err != nil {
		return nil, err
	}
	if h.RequestID, err = r.Uint32(); err != nil {
		return nil, err
	}
	if h.ChannelID, err = r.Uint64(); err != nil {
		return nil, err
	}
	if h.FragmentIndex, err = r.Uint16(); err != nil {
		return nil, err
	}
	if h.FragmentCount, err = r.Uint16(); err != nil {
		return nil, err
	}
	if h.PayloadSize, err = r.Uint32(); err != nil {
		return nil, err
	}

	for {
		tag, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		if AdditionalHeaderType(tag) == additionalHeaderEnd {
			break
		}
		n, err := r.Varint()
		if err != nil {
			return nil, ErrTruncatedAdditionalHeader
		}
		b, err := r.Bytes(int(n))
		if err != nil {
			return nil, ErrTruncatedAdditionalHeader
		}
		h.AdditionalHeaders = append(h.AdditionalHeaders, AdditionalHeader{
			Type:  AdditionalHeaderType(tag),
			Bytes: b,
		})
	}

	if h.FragmentCount > 0 && h.FragmentIndex >= h.FragmentCount {
		return nil, ErrFragmentIndex
	}

	return h, nil
}
