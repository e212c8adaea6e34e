package koda

import "testing"

func TestStringifyCompact(t *testing.T) {
	t.Parallel()

	obj := NewObject()
	obj.Set("k1", String("v1"))
	obj.Set("k2", String("v2"))
	got := Stringify(obj, StringifyOptions{})
	want := `{k1: v1 k2: v2}`
	if got != want {
		t.Errorf("Stringify() = %q, want %q", got, want)
	}
}

func TestStringifyCompactArray(t *testing.T) {
	t.Parallel()

	got := Stringify(Array([]Value{Int(1), Int(2), Int(3)}), StringifyOptions{})
	want := `[1 2 3]`
	if got != want {
		t.Errorf("Stringify() = %q, want %q", got, want)
	}
}

func TestStringifyEmpty(t *testing.T) {
	t.Parallel()

	if got := Stringify(NewObject(), StringifyOptions{}); got != "{}" {
		t.Errorf("Stringify(empty object) = %q, want {}", got)
	}
	if got := Stringify(Array(nil), StringifyOptions{}); got != "[]" {
		t.Errorf("Stringify(empty array) = %q, want []", got)
	}
}

func TestStringifyQuoting(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		s    string
		want string
	}{
		{"bare-word", "hello_world", "hello_world"},
		{"needs-quotes-space", "hello world", `"hello world"`},
		{"needs-quotes-empty", "", `""`},
		{"reserved-true", "true", `"true"`},
		{"reserved-null-case-insensitive", "NULL", `"NULL"`},
		{"escapes", "a\nb\"c", `"a\nb\"c"`},
		{"leading-digit-needs-quotes", "1abc", `"1abc"`},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			got := Stringify(String(tc.s), StringifyOptions{})
			if got != tc.want {
				t.Errorf("Stringify(%q) = %q, want %q", tc.s, got, tc.want)
			}
		})
	}
}

func TestStringifyPretty(t *testing.T) {
	t.Parallel()

	obj := NewObject()
	obj.Set("a", Int(1))
	inner := NewObject()
	inner.Set("b", Int(2))
	obj.Set("nested", inner)

	got := Stringify(obj, StringifyOptions{Indent: "  "})
	want := "{\n  a: 1\n  nested: {\n    b: 2\n  }\n}"
	if got != want {
		t.Errorf("Stringify() = %q, want %q", got, want)
	}
}

func TestStringifyRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		v    Value
	}{
		{"null", Null()},
		{"bool", Bool(true)},
		{"int", Int(-12345)},
		{"string-bare", String("identifier")},
		{"string-quoted", String("needs quotes")},
		{"array", Array([]Value{Int(1), String("two"), Bool(false)})},
		{"nested-object", func() Value {
			o := NewObject()
			o.Set("a", Int(1))
			o.Set("b", Array([]Value{Int(1), Int(2)}))
			return o
		}()},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			text := Stringify(tc.v, StringifyOptions{})
			got, err := Parse(text, ParseOptions{})
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", text, err)
			}
			if !Equal(tc.v, got) {
				t.Errorf("round trip mismatch: original %+v, text %q, reparsed %+v", tc.v, text, got)
			}
		})
	}
}
