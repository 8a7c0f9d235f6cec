// Package value implements the tagged Value union, the heap Object model,
// and the open-addressing hash table shared by the compiler and the VM.
package value

import (
	"fmt"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged union: exactly one of the payload fields is meaningful,
// selected by Kind. It is a plain struct rather than an interface so that
// values are compared and copied without an allocation, matching the
// register-sized NaN-boxed/tagged-union value clox uses.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Obj    *Object
}

// Nil is the singleton nil value.
var Nil = Value{Kind: KindNil}

func Bool_(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func Number(n float64) Value { return Value{Kind: KindNumber, Number: n} }

func Obj(o *Object) Value { return Value{Kind: KindObj, Obj: o} }

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsObj() bool    { return v.Kind == KindObj }
func (v Value) IsString() bool { return v.Kind == KindObj && v.Obj.Type == ObjString }

// AsString returns the Go string view of a string value. Callers must
// check IsString first.
func (v Value) AsString() string { return string(v.Obj.Chars) }

// IsFalsey implements spec.md's falsey rule: nil and false are falsey,
// everything else (including 0 and "") is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.Bool)
}

// Equal implements values_equal from spec.md §4.4: false across variants,
// structural within Bool/Number, pointer identity for Obj (safe because of
// interning), and IEEE-754 semantics for Number — meaning NaN != NaN.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindObj:
		return a.Obj == b.Obj
	default:
		return false
	}
}

// Print renders a Value the way print_value does: true/false, nil, %g for
// numbers, and raw bytes for strings.
func Print(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return fmt.Sprintf("%g", v.Number)
	case KindObj:
		switch v.Obj.Type {
		case ObjString:
			return string(v.Obj.Chars)
		}
	}
	return "<unknown value>"
}
