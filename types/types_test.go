package types

import "testing"

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{BoolValue(true), "TRUE"},
		{BoolValue(false), "FALSE"},
		{IntValue(-3), "-3"},
		{FloatValue(1.5), "1.5"},
		{FloatValue(150), "150"},
		{StringValue("a\"b"), `"a\"b"`},
		{Value{}, "<no value>"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Fatalf("got %q, want %q", got, c.want)
		}
	}
}

func TestConcrete(t *testing.T) {
	for _, typ := range []ValueType{Boolean, Int, Float, String} {
		if !typ.Concrete() {
			t.Fatalf("%s is not concrete", typ)
		}
	}
	for _, typ := range []ValueType{NoType, Dynamic} {
		if typ.Concrete() {
			t.Fatalf("%s is concrete", typ)
		}
	}
}

func TestOperatorClasses(t *testing.T) {
	cases := []struct {
		kind TokenKind
		want OpClass
	}{
		{PLUS, OpArithmetic},
		{MINUS, OpArithmetic},
		{MUL, OpArithmetic},
		{DIV, OpArithmetic},
		{CARET, OpArithmetic},
		{AMPERSAND, OpStringConcat},
		{EQL, OpComparison},
		{NEQ, OpComparison},
		{GT, OpComparison},
		{LT, OpComparison},
		{GTE, OpComparison},
		{LTE, OpComparison},
		{IDENT, OpNone},
		{LPAREN, OpNone},
	}
	for _, c := range cases {
		if got := c.kind.Class(); got != c.want {
			t.Fatalf("%s: got class %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	var prog Program
	prog.EmitPush(FloatValue(2), 1)
	prog.Emit(FADD, NoLocation)

	if got := prog[0].String(); got != "PUSH 2 @1" {
		t.Fatalf("got %q", got)
	}
	if got := prog[1].String(); got != "FADD" {
		t.Fatalf("got %q", got)
	}
}
