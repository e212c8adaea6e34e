package koda

import (
	"strconv"
	"strings"
)

// Stringify renders a Value as KODA text. The iteration order of an Object
// is its in-memory insertion order; Stringify does not canonicalize (only
// Encode does).
func Stringify(v Value, opts StringifyOptions) string {
	opts = opts.withDefaults()
	var sb strings.Builder
	writeValue(&sb, v, opts, 0)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value, opts StringifyOptions, level int) {
	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.BoolVal() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.IntVal(), 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.FloatVal(), 'g', -1, 64))
	case KindString:
		writeStringLiteral(sb, v.StrVal())
	case KindArray:
		writeArray(sb, v, opts, level)
	case KindObject:
		writeObject(sb, v, opts, level)
	}
}

// writeStringLiteral emits s unquoted if it lexes as a bare Identifier and
// isn't one of the three reserved spellings in any letter case; otherwise it
// is double-quoted with escapes.
func writeStringLiteral(sb *strings.Builder, s string) {
	if isBareWord(s) {
		sb.WriteString(s)
		return
	}
	writeQuoted(sb, s)
}

func isBareWord(s string) bool {
	if !isIdentifierShape(s) {
		return false
	}
	switch strings.ToLower(s) {
	case "true", "false", "null":
		return false
	default:
		return true
	}
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
}

func writeArray(sb *strings.Builder, v Value, opts StringifyOptions, level int) {
	elems := v.Elems()
	if len(elems) == 0 {
		sb.WriteString("[]")
		return
	}
	if opts.Indent == "" {
		sb.WriteByte('[')
		for i, e := range elems {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeValue(sb, e, opts, level)
		}
		sb.WriteByte(']')
		return
	}
	sb.WriteByte('[')
	sb.WriteString(opts.Newline)
	childIndent := strings.Repeat(opts.Indent, level+1)
	for _, e := range elems {
		sb.WriteString(childIndent)
		writeValue(sb, e, opts, level+1)
		sb.WriteString(opts.Newline)
	}
	sb.WriteString(strings.Repeat(opts.Indent, level))
	sb.WriteByte(']')
}

func writeObject(sb *strings.Builder, v Value, opts StringifyOptions, level int) {
	members := v.Members()
	if len(members) == 0 {
		sb.WriteString("{}")
		return
	}
	if opts.Indent == "" {
		sb.WriteByte('{')
		for i, m := range members {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeStringLiteral(sb, m.Key)
			sb.WriteString(": ")
			writeValue(sb, m.Val, opts, level)
		}
		sb.WriteByte('}')
		return
	}
	sb.WriteByte('{')
	sb.WriteString(opts.Newline)
	childIndent := strings.Repeat(opts.Indent, level+1)
	for _, m := range members {
		sb.WriteString(childIndent)
		writeStringLiteral(sb, m.Key)
		sb.WriteString(": ")
		writeValue(sb, m.Val, opts, level+1)
		sb.WriteString(opts.Newline)
	}
	sb.WriteString(strings.Repeat(opts.Indent, level))
	sb.WriteByte('}')
}
