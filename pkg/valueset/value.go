package valueset

import "fmt"

// Value is a single tagged value carried by a ValueSet entry. Exactly one
// field is meaningful, selected by Tag; List additionally carries a closed
// ElemTag describing every element's type (ValueSet lists are homogeneous).
type Value struct {
	Tag     Tag
	UInt32  uint32
	UInt64  uint64
	Str     string
	Bytes   []byte
	ElemTag Tag
	List    []Value
}

// UInt32Value wraps a uint32 as a Value.
func UInt32Value(v uint32) Value { return Value{Tag: TagUInt32, UInt32: v} }

// UInt64Value wraps a uint64 as a Value.
func UInt64Value(v uint64) Value { return Value{Tag: TagUInt64, UInt64: v} }

// StringValue wraps a string as a Value.
func StringValue(v string) Value { return Value{Tag: TagString, Str: v} }

// BytesValue wraps a byte slice as a Value.
func BytesValue(v []byte) Value { return Value{Tag: TagBytes, Bytes: v} }

// ListValue wraps a homogeneous slice of elemTag-tagged values as a Value.
// Every entry of items must carry elemTag; neither ListValue nor Encode
// verifies this.
func ListValue(elemTag Tag, items []Value) Value {
	return Value{Tag: TagList, ElemTag: elemTag, List: items}
}

func (v Value) String() string {
	switch v.Tag {
	case TagUInt32:
		return fmt.Sprintf("%d", v.UInt32)
	case TagUInt64:
		return fmt.Sprintf("%d", v.UInt64)
	case TagString:
		return v.Str
	case TagBytes:
		return fmt.Sprintf("%d bytes", len(v.Bytes))
	case TagList:
		return fmt.Sprintf("[%d %s]", len(v.List), v.ElemTag)
	default:
		return "<invalid>"
	}
}
