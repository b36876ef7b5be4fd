package ops

import (
	"testing"

	"ippvm/internal/program"
	"ippvm/internal/value"
)

func TestBinaryArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   program.Opcode
		a, b value.Value
		want value.Value
	}{
		{"add int", program.ADD, value.Int(3), value.Int(4), value.Int(7)},
		{"sub float", program.SUB, value.Float(5.5), value.Float(2.5), value.Float(3)},
		{"mul int", program.MUL, value.Int(6), value.Int(7), value.Int(42)},
		{"idiv floors toward negative infinity", program.IDIV, value.Int(-7), value.Int(2), value.Int(-4)},
		{"div float", program.DIV, value.Float(9), value.Float(2), value.Float(4.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Binary(tt.op, tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := Binary(program.DIV, value.Float(1), value.Float(0)); err == nil {
		t.Error("expected error for float division by zero")
	}
	if _, err := Binary(program.IDIV, value.Int(1), value.Int(0)); err == nil {
		t.Error("expected error for int division by zero")
	}
}

func TestMismatchedArithmeticTypes(t *testing.T) {
	if _, err := Binary(program.ADD, value.Int(1), value.Float(1)); err == nil {
		t.Error("expected BAD_OPERAND_TYPE for mixed int/float ADD")
	}
}

func TestRelationalNilRejected(t *testing.T) {
	if _, err := Binary(program.LT, value.Nil(), value.Int(1)); err == nil {
		t.Error("expected error comparing nil with LT")
	}
}

func TestBoolComparisonOrdering(t *testing.T) {
	got, err := Binary(program.LT, value.Bool(false), value.Bool(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Bool() {
		t.Error("expected false < true")
	}
}

func TestEqualityWithNil(t *testing.T) {
	tests := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{"nil==nil", value.Nil(), value.Nil(), true},
		{"nil!=int", value.Nil(), value.Int(1), false},
		{"int==int", value.Int(5), value.Int(5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Binary(program.EQ, tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Bool() != tt.want {
				t.Errorf("got %v, want %v", got.Bool(), tt.want)
			}
		})
	}
}

func TestStri2IntAndGetCharAgree(t *testing.T) {
	s := value.Str("hello")
	codeVal, err := Binary(program.STRI2INT, s, value.Int(1))
	if err != nil {
		t.Fatalf("STRI2INT: %v", err)
	}
	charVal, err := Binary(program.GETCHAR, s, value.Int(1))
	if err != nil {
		t.Fatalf("GETCHAR: %v", err)
	}
	if int64([]rune(charVal.Str())[0]) != codeVal.Int() {
		t.Errorf("STRI2INT/GETCHAR disagree: %v vs %q", codeVal.Int(), charVal.Str())
	}
}

func TestStri2IntOutOfRange(t *testing.T) {
	if _, err := Binary(program.STRI2INT, value.Str("hi"), value.Int(-1)); err == nil {
		t.Error("expected error for negative index")
	}
	if _, err := Binary(program.STRI2INT, value.Str("hi"), value.Int(5)); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestConcat(t *testing.T) {
	got, err := Binary(program.CONCAT, value.Str("foo"), value.Str("bar"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "foobar" {
		t.Errorf("got %q, want foobar", got.Str())
	}
}

func TestSetChar(t *testing.T) {
	got, err := SetChar(value.Str("hello"), value.Int(0), value.Str("y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "yello" {
		t.Errorf("got %q, want yello", got.Str())
	}

	if _, err := SetChar(value.Str("hello"), value.Int(0), value.Str("")); err == nil {
		t.Error("expected error for empty replacement")
	}
}

func TestUnaryBoolNotRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		once, err := Unary(program.NOT, value.Bool(b))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		twice, err := Unary(program.NOT, once)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if twice.Bool() != b {
			t.Errorf("NOT(NOT(%v)) = %v", b, twice.Bool())
		}
	}
}

func TestInt2FloatFloat2IntRoundTrip(t *testing.T) {
	f, err := Unary(program.INT2FLOAT, value.Int(42))
	if err != nil {
		t.Fatalf("INT2FLOAT: %v", err)
	}
	back, err := Unary(program.FLOAT2INT, f)
	if err != nil {
		t.Fatalf("FLOAT2INT: %v", err)
	}
	if back.Int() != 42 {
		t.Errorf("round trip got %d, want 42", back.Int())
	}
}

func TestInt2CharRange(t *testing.T) {
	if _, err := Unary(program.INT2CHAR, value.Int(-1)); err == nil {
		t.Error("expected error for negative code point")
	}
	if _, err := Unary(program.INT2CHAR, value.Int(0x110000)); err == nil {
		t.Error("expected error for code point beyond 0x10FFFF")
	}
	got, err := Unary(program.INT2CHAR, value.Int(65))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "A" {
		t.Errorf("got %q, want A", got.Str())
	}
}

func TestStrlenCountsRunesNotBytes(t *testing.T) {
	got, err := Unary(program.STRLEN, value.Str("héllo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int() != 5 {
		t.Errorf("got %d, want 5", got.Int())
	}
}

func TestTypeName(t *testing.T) {
	got, err := Unary(program.TYPE, value.Int(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str() != "int" {
		t.Errorf("got %q, want int", got.Str())
	}
}
