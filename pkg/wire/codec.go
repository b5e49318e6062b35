package wire

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/google/uuid"
)

// Reader provides sequential little-endian decoding of the primitives used
// throughout the CDP Near Share wire format. It operates over an
// already-buffered frame body; the transport framing (§ frame.go) is
// responsible for delivering a complete frame before decoding begins.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reads starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Peek returns the n unread bytes starting at the current position without
// advancing the cursor.
func (r *Reader) Peek(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrShortBuffer
	}
	return r.buf[r.pos : r.pos+n], nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a little-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 reads a little-endian uint64.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Varint reads an unsigned LEB128 varint (used by the additional-headers
// table's length field).
func (r *Reader) Varint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.Uint8()
		if err != nil {
			return 0, err
		}
		if shift >= 64 {
			return 0, ErrVarintOverflow
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// Bytes reads an exact number of raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// GUID reads a 16-byte GUID.
func (r *Reader) GUID() (uuid.UUID, error) {
	b, err := r.take(16)
	if err != nil {
		return uuid.UUID{}, err
	}
	var id uuid.UUID
	copy(id[:], b)
	return id, nil
}

// StringUTF8 reads a uint16-length-prefixed UTF-8 string.
func (r *Reader) StringUTF8() (string, error) {
	n, err := r.Uint16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StringUTF16 reads a uint16-length-prefixed (in UTF-16 code units)
// UTF-16LE string, as used by ValueSet string values.
func (r *Reader) StringUTF16() (string, error) {
	units, err := r.Uint16()
	if err != nil {
		return "", err
	}
	raw, err := r.take(int(units) * 2)
	if err != nil {
		return "", err
	}
	if len(raw)%2 != 0 {
		return "", ErrInvalidUTF16
	}
	u16 := make([]uint16, len(raw)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return string(utf16.Decode(u16)), nil
}

// Payload reads a big-endian uint32 length followed by that many bytes, the
// "payload" primitive used to embed a nested framed blob.
func (r *Reader) Payload() ([]byte, error) {
	b, err := r.take(4)
	if err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(b)
	return r.Bytes(int(n))
}

// Writer provides sequential little-endian encoding mirroring Reader.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// PutUint8 writes a single byte.
func (w *Writer) PutUint8(v uint8) {
	w.buf.WriteByte(v)
}

// PutUint16 writes a little-endian uint16.
func (w *Writer) PutUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// PutUint32 writes a little-endian uint32.
func (w *Writer) PutUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// PutUint64 writes a little-endian uint64.
func (w *Writer) PutUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// PutVarint writes v as an unsigned LEB128 varint.
func (w *Writer) PutVarint(v uint64) {
	for v >= 0x80 {
		w.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	w.buf.WriteByte(byte(v))
}

// PutBytes writes raw bytes verbatim.
func (w *Writer) PutBytes(b []byte) {
	w.buf.Write(b)
}

// PutGUID writes a 16-byte GUID.
func (w *Writer) PutGUID(id uuid.UUID) {
	w.buf.Write(id[:])
}

// PutStringUTF8 writes a uint16-length-prefixed UTF-8 string.
func (w *Writer) PutStringUTF8(s string) {
	w.PutUint16(uint16(len(s)))
	w.buf.WriteString(s)
}

// PutStringUTF16 writes a uint16-length-prefixed (in UTF-16 code units)
// UTF-16LE string.
func (w *Writer) PutStringUTF16(s string) {
	units := utf16.Encode([]rune(s))
	w.PutUint16(uint16(len(units)))
	for _, u := range units {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], u)
		w.buf.Write(b[:])
	}
}

// PutPayload writes a big-endian uint32 length followed by b.
func (w *Writer) PutPayload(b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	w.buf.Write(lenBuf[:])
	w.buf.Write(b)
}
