// Package value implements the IPPcode22 tagged value model: a closed union
// of {nil, bool, int, string, float}, plus the Uninitialized slot state that
// keeps "never assigned" distinct from Nil.
//
// Adapted from the switch-on-tag style of the teacher's internal/vm.Value
// (a bare interface{} with a type switch in PrintValue); here the tag is
// explicit and the zero Value is Nil, so a slot's emptiness is represented
// one level up by Slot rather than by an untyped nil.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the tag of a Value's payload.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged union. The zero Value is Nil.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Nil() Value                { return Value{kind: KindNil} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Int(i int64) Value         { return Value{kind: KindInt, i: i} }
func Float(f float64) Value     { return Value{kind: KindFloat, f: f} }
func Str(s string) Value        { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) Bool() bool     { return v.b }
func (v Value) Int() int64     { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Str() string    { return v.s }

// TypeName renders the type tag the way the TYPE opcode and variable
// diagnostics need it: lowercase variant name.
func (v Value) TypeName() string { return v.kind.String() }

// String renders a Value for WRITE/DPRINT: bool as lowercase true/false,
// nil as the empty string, int as decimal, float as the canonical
// hexadecimal floating-point form that ParseFloatLiteral round-trips.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'x', -1, 64)
	case KindString:
		return v.s
	default:
		return fmt.Sprintf("<invalid value kind %d>", v.kind)
	}
}

// ParseIntLiteral parses the text payload of an int argument: decimal,
// optionally signed.
func ParseIntLiteral(text string) (int64, error) {
	return strconv.ParseInt(text, 10, 64)
}

// ParseFloatLiteral parses the text payload of a float argument: Go's
// strconv.ParseFloat accepts both plain decimal and hexadecimal-float
// notation (0x1.8p3), which is exactly the pair of forms the value model
// needs to accept and is able to round-trip via Value.String.
func ParseFloatLiteral(text string) (float64, error) {
	return strconv.ParseFloat(text, 64)
}

// ParseBoolLiteral parses the text payload of a bool argument: the XML
// grammar only allows the literal strings "true" and "false".
func ParseBoolLiteral(text string) (bool, bool) {
	switch text {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// ParseForRead converts one line of READ input to the requested target
// Kind. A line that doesn't fit the target type (a non-numeric "--vars"
// for an int READ, say) yields (Nil(), false), matching
// handle_read_operation's fall-through to None on a failed conversion
// rather than raising BAD_OPERAND_VALUE.
func ParseForRead(target Kind, line string) (Value, bool) {
	switch target {
	case KindNil:
		return Nil(), true
	case KindBool:
		return Bool(strings.EqualFold(line, "true")), true
	case KindInt:
		i, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return Nil(), false
		}
		return Int(i), true
	case KindFloat:
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return Nil(), false
		}
		return Float(f), true
	case KindString:
		return Str(line), true
	default:
		return Nil(), false
	}
}
