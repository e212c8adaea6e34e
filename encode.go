package koda

import (
	"encoding/binary"
	"math"
	"sort"
)

// Binary tags identifying each encoded value's type.
const (
	tagNull   byte = 0x01
	tagFalse  byte = 0x02
	tagTrue   byte = 0x03
	tagInt    byte = 0x04
	tagFloat  byte = 0x05
	tagString byte = 0x06
	tagBinary byte = 0x07 // reserved; never emitted
	tagArray  byte = 0x10
	tagObject byte = 0x11
)

var magic = [4]byte{'K', 'O', 'D', 'A'}

const formatVersion byte = 1

// Encode produces the canonical .kod binary encoding of v.
// Structurally equal values (same key sets, element orders, and
// numeric bit patterns) always produce byte-identical output, regardless of
// the in-memory insertion order of any Object's keys.
func Encode(v Value, opts EncodeOptions) ([]byte, error) {
	opts = opts.withDefaults()

	keys := collectKeys(v)
	dict := make(map[string]uint32, len(keys))
	for i, k := range keys {
		dict[k] = uint32(i)
	}

	buf := make([]byte, 0, 64)
	buf = append(buf, magic[:]...)
	buf = append(buf, formatVersion)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(keys)))
	for _, k := range keys {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(k)))
		buf = append(buf, k...)
	}

	return encodeValue(buf, v, dict, 0, opts)
}

// MustEncode is Encode with default options, panicking on error.
func MustEncode(v Value) []byte {
	b, err := Encode(v, EncodeOptions{})
	if err != nil {
		panic(err)
	}
	return b
}

// collectKeys returns the set of every object key appearing anywhere in the
// tree, sorted by UTF-8 byte order (Go's native string comparison already
// orders valid UTF-8 by byte sequence).
func collectKeys(v Value) []string {
	seen := make(map[string]struct{})
	var walk func(Value)
	walk = func(v Value) {
		switch v.Kind {
		case KindArray:
			for _, e := range v.Elems() {
				walk(e)
			}
		case KindObject:
			for _, m := range v.Members() {
				seen[m.Key] = struct{}{}
				walk(m.Val)
			}
		}
	}
	walk(v)
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func encodeValue(buf []byte, v Value, dict map[string]uint32, depth int, opts EncodeOptions) ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return append(buf, tagNull), nil
	case KindBool:
		if v.BoolVal() {
			return append(buf, tagTrue), nil
		}
		return append(buf, tagFalse), nil
	case KindInt:
		buf = append(buf, tagInt)
		return binary.BigEndian.AppendUint64(buf, uint64(v.IntVal())), nil
	case KindFloat:
		buf = append(buf, tagFloat)
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(v.FloatVal())), nil
	case KindString:
		s := v.StrVal()
		buf = append(buf, tagString)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
		return append(buf, s...), nil
	case KindArray:
		return encodeArray(buf, v, dict, depth, opts)
	case KindObject:
		return encodeObject(buf, v, dict, depth, opts)
	default:
		return buf, newEncodeError(len(buf), reasonUnknownTag)
	}
}

func encodeArray(buf []byte, v Value, dict map[string]uint32, depth int, opts EncodeOptions) ([]byte, error) {
	nd := depth + 1
	if nd > opts.MaxDepth {
		return buf, newEncodeError(len(buf), reasonMaxDepth)
	}
	elems := v.Elems()
	buf = append(buf, tagArray)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(elems)))
	var err error
	for _, e := range elems {
		buf, err = encodeValue(buf, e, dict, nd, opts)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

func encodeObject(buf []byte, v Value, dict map[string]uint32, depth int, opts EncodeOptions) ([]byte, error) {
	nd := depth + 1
	if nd > opts.MaxDepth {
		return buf, newEncodeError(len(buf), reasonMaxDepth)
	}
	members := append([]Member(nil), v.Members()...)
	sort.Slice(members, func(i, j int) bool { return members[i].Key < members[j].Key })

	buf = append(buf, tagObject)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(members)))
	var err error
	for _, m := range members {
		buf = binary.BigEndian.AppendUint32(buf, dict[m.Key])
		buf, err = encodeValue(buf, m.Val, dict, nd, opts)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}
