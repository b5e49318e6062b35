// Package valueset implements the CDP "ValueSet" property bag: an ordered
// string-keyed dictionary of tagged values, used as the payload language of
// the Near Share application layer (spec.md §3, §4.7).
package valueset

// entry is one ordered (key, value) pair of a ValueSet.
type entry struct {
	key   string
	value Value
}

// ValueSet is an ordered string-keyed map of tagged values. Key order is
// preserved on the wire (spec.md §3: "ordering is preserved on the wire but
// semantically irrelevant to consumers"); Set replaces the value of an
// existing key in place rather than moving it to the end.
type ValueSet struct {
	entries []entry
	index   map[string]int
}

// New returns an empty ValueSet.
func New() *ValueSet {
	return &ValueSet{index: make(map[string]int)}
}

// Set inserts or replaces the value for key.
func (vs *ValueSet) Set(key string, value Value) {
	if vs.index == nil {
		vs.index = make(map[string]int)
	}
	if i, ok := vs.index[key]; ok {
		vs.entries[i].value = value
		return
	}
	vs.index[key] = len(vs.entries)
	vs.entries = append(vs.entries, entry{key: key, value: value})
}

// SetUInt32 sets key to a UInt32 value.
func (vs *ValueSet) SetUInt32(key string, v uint32) { vs.Set(key, UInt32Value(v)) }

// SetUInt64 sets key to a UInt64 value.
func (vs *ValueSet) SetUInt64(key string, v uint64) { vs.Set(key, UInt64Value(v)) }

// SetString sets key to a String value.
func (vs *ValueSet) SetString(key string, v string) { vs.Set(key, StringValue(v)) }

// SetBytes sets key to a Bytes value.
func (vs *ValueSet) SetBytes(key string, v []byte) { vs.Set(key, BytesValue(v)) }

// SetStringList sets key to a homogeneous list of strings.
func (vs *ValueSet) SetStringList(key string, items []string) {
	vals := make([]Value, len(items))
	for i, s := range items {
		vals[i] = StringValue(s)
	}
	vs.Set(key, ListValue(TagString, vals))
}

// Get returns the value stored for key, if present.
func (vs *ValueSet) Get(key string) (Value, bool) {
	i, ok := vs.index[key]
	if !ok {
		return Value{}, false
	}
	return vs.entries[i].value, true
}

// Has reports whether key is present.
func (vs *ValueSet) Has(key string) bool {
	_, ok := vs.index[key]
	return ok
}

// Keys returns the set's keys in insertion/wire order.
func (vs *ValueSet) Keys() []string {
	keys := make([]string, len(vs.entries))
	for i, e := range vs.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of entries.
func (vs *ValueSet) Len() int {
	return len(vs.entries)
}

// GetUInt32 returns the UInt32 value for key, failing ErrMissingKey or
// ErrWrongTag as appropriate.
func (vs *ValueSet) GetUInt32(key string) (uint32, error) {
	v, ok := vs.Get(key)
	if !ok {
		return 0, ErrMissingKey
	}
	if v.Tag != TagUInt32 {
		return 0, ErrWrongTag
	}
	return v.UInt32, nil
}

// GetUInt64 returns the UInt64 value for key.
func (vs *ValueSet) GetUInt64(key string) (uint64, error) {
	v, ok := vs.Get(key)
	if !ok {
		return 0, ErrMissingKey
	}
	if v.Tag != TagUInt64 {
		return 0, ErrWrongTag
	}
	return v.UInt64, nil
}

// GetString returns the String value for key.
func (vs *ValueSet) GetString(key string) (string, error) {
	v, ok := vs.Get(key)
	if !ok {
		return "", ErrMissingKey
	}
	if v.Tag != TagString {
		return "", ErrWrongTag
	}
	return v.Str, nil
}

// GetBytes returns the Bytes value for key.
func (vs *ValueSet) GetBytes(key string) ([]byte, error) {
	v, ok := vs.Get(key)
	if !ok {
		return nil, ErrMissingKey
	}
	if v.Tag != TagBytes {
		return nil, ErrWrongTag
	}
	return v.Bytes, nil
}

// GetStringList returns the elements of a homogeneous String list value.
func (vs *ValueSet) GetStringList(key string) ([]string, error) {
	v, ok := vs.Get(key)
	if !ok {
		return nil, ErrMissingKey
	}
	if v.Tag != TagList || v.ElemTag != TagString {
		return nil, ErrWrongTag
	}
	out := make([]string, len(v.List))
	for i, item := range v.List {
		out[i] = item.Str
	}
	return out, nil
}
