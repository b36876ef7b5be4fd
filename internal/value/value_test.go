package value

import "testing"

func TestStringRendering(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"nil", Nil(), ""},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"int", Int(-42), "-42"},
		{"string", Str("hello"), "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFloatRoundTrip(t *testing.T) {
	orig := Float(3.5)
	text := orig.String()
	parsed, err := ParseFloatLiteral(text)
	if err != nil {
		t.Fatalf("ParseFloatLiteral(%q): %v", text, err)
	}
	if Float(parsed) != orig {
		t.Errorf("round-trip: got %v, want %v", parsed, orig.Float())
	}
}

func TestParseIntLiteral(t *testing.T) {
	i, err := ParseIntLiteral("-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i != -17 {
		t.Errorf("got %d, want -17", i)
	}
	if _, err := ParseIntLiteral("not-an-int"); err == nil {
		t.Error("expected error for non-numeric text")
	}
}

func TestParseBoolLiteral(t *testing.T) {
	if b, ok := ParseBoolLiteral("true"); !ok || !b {
		t.Errorf("true: got (%v, %v)", b, ok)
	}
	if b, ok := ParseBoolLiteral("false"); !ok || b {
		t.Errorf("false: got (%v, %v)", b, ok)
	}
	if _, ok := ParseBoolLiteral("True"); ok {
		t.Error("expected case-sensitive rejection of 'True'")
	}
}

func TestParseForRead(t *testing.T) {
	if v, ok := ParseForRead(KindInt, "42"); !ok || v.Int() != 42 {
		t.Errorf("int: got (%v, %v)", v, ok)
	}
	if v, ok := ParseForRead(KindInt, "not-an-int"); ok || v.Kind() != KindNil {
		t.Errorf("bad int: got (%v, %v)", v, ok)
	}
	if v, ok := ParseForRead(KindBool, "TRUE"); !ok || !v.Bool() {
		t.Errorf("bool case-insensitive: got (%v, %v)", v, ok)
	}
	if v, ok := ParseForRead(KindBool, "anything else"); !ok || v.Bool() {
		t.Errorf("bool fallback false: got (%v, %v)", v, ok)
	}
}

func TestTypeName(t *testing.T) {
	if got := Int(1).TypeName(); got != "int" {
		t.Errorf("got %q, want int", got)
	}
	if got := Nil().TypeName(); got != "nil" {
		t.Errorf("got %q, want nil", got)
	}
}
