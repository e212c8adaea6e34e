// Package koda implements the KODA data-interchange format: a human-editable
// text syntax (.koda) and a canonical binary encoding (.kod) over a shared
// value model.
//
//	text  --Parse-->      Value
//	Value --Stringify-->  text
//	Value --Encode-->     bytes
//	bytes --Decode-->     Value
//
// # Value model
//
// A Value is one of Null, Bool, Int, Float, String, Array, or Object. Object
// preserves insertion order in memory; Encode re-sorts object entries (and
// builds a key dictionary) so that structurally equal values always produce
// byte-identical output, regardless of the order keys were inserted in.
//
// # Limits
//
// Parse, Encode, and Decode all accept an Options struct bounding recursion
// depth and, for text and binary input respectively, input length,
// dictionary size, and string length. Exceeding any limit is reported before
// any allocation proportional to the offending size.
package koda

import "math"

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an Object, in insertion order.
type Member struct {
	Key string
	Val Value
}

// Value is a tagged sum over {Null, Bool, Int64, Float64, String, Array,
// Object}. Exactly one of the payload fields is meaningful, selected by
// Kind; this is deliberately a flat struct rather than an interface
// hierarchy, so the recursive codecs are a switch on Kind instead of
// per-node dynamic dispatch.
type Value struct {
	Kind Kind

	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
	arrVal   []Value
	objVal   []Member
	objIndex map[string]int
}

// Null returns the Null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{Kind: KindBool, boolVal: b} }

// Int returns an Int value.
func Int(n int64) Value { return Value{Kind: KindInt, intVal: n} }

// Float returns a Float value.
func Float(f float64) Value { return Value{Kind: KindFloat, floatVal: f} }

// String returns a String value.
func String(s string) Value { return Value{Kind: KindString, strVal: s} }

// Array returns an Array value wrapping elems. elems is taken by reference;
// callers must not mutate it afterward.
func Array(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, arrVal: elems}
}

// NewObject returns an empty Object value ready for Set.
func NewObject() Value {
	return Value{Kind: KindObject, objIndex: make(map[string]int)}
}

// BoolVal reports the payload of a KindBool Value; the result is meaningless
// for any other Kind.
func (v Value) BoolVal() bool { return v.boolVal }

// IntVal reports the payload of a KindInt Value.
func (v Value) IntVal() int64 { return v.intVal }

// FloatVal reports the payload of a KindFloat Value.
func (v Value) FloatVal() float64 { return v.floatVal }

// StrVal reports the payload of a KindString Value.
func (v Value) StrVal() string { return v.strVal }

// Elems reports the elements of a KindArray Value, in order.
func (v Value) Elems() []Value { return v.arrVal }

// Members reports the key/value pairs of a KindObject Value, in insertion
// order.
func (v Value) Members() []Member { return v.objVal }

// Len reports the number of elements (Array) or members (Object).
func (v Value) Len() int {
	switch v.Kind {
	case KindArray:
		return len(v.arrVal)
	case KindObject:
		return len(v.objVal)
	default:
		return 0
	}
}

// Get returns the value stored under key and whether it was present. Get
// only applies to KindObject values.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	i, ok := v.objIndex[key]
	if !ok {
		return Value{}, false
	}
	return v.objVal[i].Val, true
}

// Set inserts or overwrites key in an Object value, preserving the position
// of an existing key and appending new keys at the end. Set panics if v is
// not an Object; callers constructing object literals should start from
// NewObject.
func (v *Value) Set(key string, val Value) {
	if v.Kind != KindObject {
		panic("koda: Set called on non-object Value")
	}
	if v.objIndex == nil {
		v.objIndex = make(map[string]int)
	}
	if i, ok := v.objIndex[key]; ok {
		v.objVal[i].Val = val
		return
	}
	v.objIndex[key] = len(v.objVal)
	v.objVal = append(v.objVal, Member{Key: key, Val: val})
}

// Equal reports whether v and other are structurally equal. It has this
// signature (rather than being a free function) so that
// github.com/google/go-cmp/cmp recognizes it automatically when diffing
// values that contain a Value, without needing cmp.AllowUnexported.
func (v Value) Equal(other Value) bool {
	return equalValues(v, other)
}

// Equal reports whether a and b are structurally equal: same Kind, same
// payload (Float compared by bit pattern, so NaN equals NaN and -0 does not
// equal +0), same Array element order, and same Object key set with equal
// values (Object key order is not significant).
func Equal(a, b Value) bool {
	return equalValues(a, b)
}

func equalValues(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInt:
		return a.intVal == b.intVal
	case KindFloat:
		return math.Float64bits(a.floatVal) == math.Float64bits(b.floatVal)
	case KindString:
		return a.strVal == b.strVal
	case KindArray:
		if len(a.arrVal) != len(b.arrVal) {
			return false
		}
		for i := range a.arrVal {
			if !Equal(a.arrVal[i], b.arrVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.objVal) != len(b.objVal) {
			return false
		}
		for _, m := range a.objVal {
			bv, ok := b.Get(m.Key)
			if !ok || !Equal(m.Val, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
