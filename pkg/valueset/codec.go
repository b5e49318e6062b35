package valueset

import "github.com/cdpnear/nearshare/pkg/wire"

// Encode serializes vs as: a uint32 entry count, followed by each entry in
// wire order (key as a length-prefixed UTF-16LE string, then the tagged
// value). List values are homogeneous: one element tag byte followed by a
// uint32 element count and the untagged elements themselves.
func Encode(vs *ValueSet) []byte {
	w := wire.NewWriter()
	w.PutUint32(uint32(len(vs.entries)))
	for _, e := range vs.entries {
		w.PutStringUTF16(e.key)
		encodeValue(w, e.value)
	}
	return w.Bytes()
}

func encodeValue(w *wire.Writer, v Value) {
	w.PutUint8(uint8(v.Tag))
	switch v.Tag {
	case TagUInt32:
		w.PutUint32(v.UInt32)
	case TagUInt64:
		w.PutUint64(v.UInt64)
	case TagString:
		w.PutStringUTF16(v.Str)
	case TagBytes:
		w.PutPayload(v.Bytes)
	case TagList:
		w.PutUint8(uint8(v.ElemTag))
		w.PutUint32(uint32(len(v.List)))
		for _, item := range v.List {
			encodeValueBody(w, v.ElemTag, item)
		}
	}
}

// encodeValueBody writes a list element's body without its own tag byte,
// since a list's element tag is carried once for the whole list.
func encodeValueBody(w *wire.Writer, tag Tag, v Value) {
	switch tag {
	case TagUInt32:
		w.PutUint32(v.UInt32)
	case TagUInt64:
		w.PutUint64(v.UInt64)
	case TagString:
		w.PutStringUTF16(v.Str)
	case TagBytes:
		w.PutPayload(v.Bytes)
	}
}

// Decode parses a ValueSet previously produced by Encode. Unknown tag bytes
// (outside the closed Tag enum) fail with ErrUnknownTag rather than being
// carried through as opaque data (spec.md §9 design note).
func Decode(b []byte) (*ValueSet, error) {
	r := wire.NewReader(b)
	count, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	vs := New()
	for i := uint32(0); i < count; i++ {
		key, err := r.StringUTF16()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(r)
		if err != nil {
			return nil, err
		}
		vs.Set(key, v)
	}
	return vs, nil
}

func decodeValue(r *wire.Reader) (Value, error) {
	tagByte, err := r.Uint8()
	if err != nil {
		return Value{}, err
	}
	tag := Tag(tagByte)
	if !tag.valid() {
		return Value{}, ErrUnknownTag
	}
	if tag == TagList {
		elemTagByte, err := r.Uint8()
		if err != nil {
			return Value{}, err
		}
		elemTag := Tag(elemTagByte)
		if !elemTag.valid() || elemTag == TagList {
			return Value{}, ErrUnknownTag
		}
		n, err := r.Uint32()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, n)
		for i := uint32(0); i < n; i++ {
			item, err := decodeValueBody(r, elemTag)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return ListValue(elemTag, items), nil
	}
	return decodeValueBody(r, tag)
}

func decodeValueBody(r *wire.Reader, tag Tag) (Value, error) {
	switch tag {
	case TagUInt32:
		v, err := r.Uint32()
		if err != nil {
			return Value{}, err
		}
		return UInt32Value(v), nil
	case TagUInt64:
		v, err := r.Uint64()
		if err != nil {
			return Value{}, err
		}
		return UInt64Value(v), nil
	case TagString:
		v, err := r.StringUTF16()
		if err != nil {
			return Value{}, err
		}
		return StringValue(v), nil
	case TagBytes:
		v, err := r.Payload()
		if err != nil {
			return Value{}, err
		}
		return BytesValue(v), nil
	default:
		return Value{}, ErrUnknownTag
	}
}
