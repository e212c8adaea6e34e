package koda

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Decode parses the canonical .kod binary encoding into a Value. All length
// fields are bounds-checked against the decoder's limits before any
// allocation proportional to the declared size.
func Decode(data []byte, opts DecodeOptions) (Value, error) {
	opts = opts.withDefaults()

	if len(data) < 5 {
		return Value{}, newDecodeError(len(data), reasonTruncated)
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return Value{}, newDecodeError(0, reasonInvalidMagic)
	}
	if data[4] != formatVersion {
		return Value{}, newDecodeError(4, reasonUnsupportedVersion)
	}
	pos := 5

	if pos+4 > len(data) {
		return Value{}, newDecodeError(pos, reasonTruncated)
	}
	dictLen := binary.BigEndian.Uint32(data[pos:])
	pos += 4
	if dictLen > uint32(opts.MaxDictionarySize) {
		return Value{}, newDecodeError(pos, reasonDictTooLarge)
	}

	dict := make([]string, 0, dictLen)
	for i := uint32(0); i < dictLen; i++ {
		if pos+4 > len(data) {
			return Value{}, newDecodeError(pos, reasonTruncated)
		}
		keyLen := binary.BigEndian.Uint32(data[pos:])
		pos += 4
		if keyLen > uint32(opts.MaxStringLength) {
			return Value{}, newDecodeError(pos, reasonKeyTooLong)
		}
		if pos+int(keyLen) > len(data) {
			return Value{}, newDecodeError(pos, reasonTruncated)
		}
		keyBytes := data[pos : pos+int(keyLen)]
		if !utf8.Valid(keyBytes) {
			return Value{}, newDecodeError(pos, reasonInvalidUTF8)
		}
		dict = append(dict, string(keyBytes))
		pos += int(keyLen)
	}

	v, pos, err := decodeValue(data, pos, dict, 0, opts)
	if err != nil {
		return Value{}, err
	}
	if pos != len(data) {
		return Value{}, newDecodeError(pos, reasonTrailingBytes)
	}
	return v, nil
}

// MustDecode is Decode with default options, panicking on error. Intended
// for call sites that have already validated their input, such as
// embedding a .kod literal in a test.
func MustDecode(data []byte) Value {
	v, err := Decode(data, DecodeOptions{})
	if err != nil {
		panic(err)
	}
	return v
}

func decodeValue(data []byte, pos int, dict []string, depth int, opts DecodeOptions) (Value, int, error) {
	if pos >= len(data) {
		return Value{}, pos, newDecodeError(pos, reasonTruncated)
	}
	tag := data[pos]
	pos++

	switch tag {
	case tagNull:
		return Null(), pos, nil
	case tagFalse:
		return Bool(false), pos, nil
	case tagTrue:
		return Bool(true), pos, nil
	case tagInt:
		if pos+8 > len(data) {
			return Value{}, pos, newDecodeError(pos, reasonTruncated)
		}
		n := int64(binary.BigEndian.Uint64(data[pos:]))
		return Int(n), pos + 8, nil
	case tagFloat:
		if pos+8 > len(data) {
			return Value{}, pos, newDecodeError(pos, reasonTruncated)
		}
		bits := binary.BigEndian.Uint64(data[pos:])
		return Float(math.Float64frombits(bits)), pos + 8, nil
	case tagString:
		s, newPos, err := decodeString(data, pos, opts)
		if err != nil {
			return Value{}, newPos, err
		}
		return String(s), newPos, nil
	case tagBinary:
		return Value{}, pos - 1, newDecodeError(pos-1, reasonBinaryUnsupported)
	case tagArray:
		return decodeArray(data, pos, dict, depth, opts)
	case tagObject:
		return decodeObject(data, pos, dict, depth, opts)
	default:
		return Value{}, pos - 1, newDecodeError(pos-1, reasonUnknownTag)
	}
}

func decodeString(data []byte, pos int, opts DecodeOptions) (string, int, error) {
	if pos+4 > len(data) {
		return "", pos, newDecodeError(pos, reasonTruncated)
	}
	strLen := binary.BigEndian.Uint32(data[pos:])
	pos += 4
	if strLen > uint32(opts.MaxStringLength) {
		return "", pos, newDecodeError(pos, reasonStringTooLong)
	}
	if pos+int(strLen) > len(data) {
		return "", pos, newDecodeError(pos, reasonTruncated)
	}
	b := data[pos : pos+int(strLen)]
	if !utf8.Valid(b) {
		return "", pos, newDecodeError(pos, reasonInvalidUTF8)
	}
	return string(b), pos + int(strLen), nil
}

func decodeArray(data []byte, pos int, dict []string, depth int, opts DecodeOptions) (Value, int, error) {
	nd := depth + 1
	if nd > opts.MaxDepth {
		return Value{}, pos, newDecodeError(pos, reasonMaxDepth)
	}
	if pos+4 > len(data) {
		return Value{}, pos, newDecodeError(pos, reasonTruncated)
	}
	count := binary.BigEndian.Uint32(data[pos:])
	pos += 4

	// count comes straight off the wire; cap the preallocation by what the
	// remaining input could actually hold (each element is at least one
	// byte) so a forged huge count can't force a multi-gigabyte allocation
	// before a single byte of element data is read.
	hint := count
	if remaining := uint32(len(data) - pos); hint > remaining {
		hint = remaining
	}
	elems := make([]Value, 0, hint)
	for i := uint32(0); i < count; i++ {
		var v Value
		var err error
		v, pos, err = decodeValue(data, pos, dict, nd, opts)
		if err != nil {
			return Value{}, pos, err
		}
		elems = append(elems, v)
	}
	return Array(elems), pos, nil
}

func decodeObject(data []byte, pos int, dict []string, depth int, opts DecodeOptions) (Value, int, error) {
	nd := depth + 1
	if nd > opts.MaxDepth {
		return Value{}, pos, newDecodeError(pos, reasonMaxDepth)
	}
	if pos+4 > len(data) {
		return Value{}, pos, newDecodeError(pos, reasonTruncated)
	}
	count := binary.BigEndian.Uint32(data[pos:])
	pos += 4

	obj := NewObject()
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(data) {
			return Value{}, pos, newDecodeError(pos, reasonTruncated)
		}
		keyIdx := binary.BigEndian.Uint32(data[pos:])
		pos += 4
		if int(keyIdx) >= len(dict) {
			return Value{}, pos, newDecodeError(pos, reasonInvalidKeyIndex)
		}
		key := dict[keyIdx]

		var v Value
		var err error
		v, pos, err = decodeValue(data, pos, dict, nd, opts)
		if err != nil {
			return Value{}, pos, err
		}
		if _, exists := obj.Get(key); exists {
			return Value{}, pos, newDecodeError(pos, reasonDuplicateKey)
		}
		obj.Set(key, v)
	}
	return obj, pos, nil
}
