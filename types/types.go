package types

import (
	"fmt"
	"strconv"
)

// ValueType is the static type of an expression, an attribute, or a
// function result. Every expression node carries exactly one ValueType,
// fixed when the node is built.
type ValueType int

const (
	// NoType is the "no such type" sentinel. It is what
	// Function.ValidateArgTypes returns when a call matches no
	// signature; it is never a valid expression type.
	NoType ValueType = iota

	Boolean
	Int
	Float
	String

	// Dynamic is only valid as a function's declared return type, when
	// the concrete result type depends on the arguments of a call.
	Dynamic
)

func (t ValueType) String() string {
	switch t {
	case NoType:
		return "notype"
	case Boolean:
		return "boolean"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Concrete reports whether t is one of the four types a value can
// actually have at runtime.
func (t ValueType) Concrete() bool {
	return t == Boolean || t == Int || t == Float || t == String
}

// Value is a single runtime value: one of the four concrete types.
type Value struct {
	Type  ValueType
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func BoolValue(b bool) Value     { return Value{Type: Boolean, Bool: b} }
func IntValue(i int64) Value     { return Value{Type: Int, Int: i} }
func FloatValue(f float64) Value { return Value{Type: Float, Float: f} }
func StringValue(s string) Value { return Value{Type: String, Str: s} }

func (v Value) String() string {
	switch v.Type {
	case Boolean:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case String:
		return strconv.Quote(v.Str)
	}
	return "<no value>"
}

// TokenKind identifies a lexical token.
type TokenKind int

const (
	EOS TokenKind = iota // end of the token stream
	ERROR

	STRING_CONST
	FLOAT_CONST
	BOOLEAN_CONST
	IDENT

	LBRACE
	RBRACE
	LPAREN
	RPAREN
	COLON
	DOLLAR
	COMMA

	CARET
	PLUS
	MINUS
	DIV
	MUL
	AMPERSAND

	EQL
	NEQ
	GT
	LT
	GTE
	LTE
)

func (k TokenKind) String() string {
	data := map[TokenKind]string{
		EOS:           "EOS",
		ERROR:         "ERROR",
		STRING_CONST:  "STRING",
		FLOAT_CONST:   "FLOAT",
		BOOLEAN_CONST: "BOOLEAN",
		IDENT:         "IDENT",
		LBRACE:        "{",
		RBRACE:        "}",
		LPAREN:        "(",
		RPAREN:        ")",
		COLON:         ":",
		DOLLAR:        "$",
		COMMA:         ",",
		CARET:         "^",
		PLUS:          "+",
		MINUS:         "-",
		DIV:           "/",
		MUL:           "*",
		AMPERSAND:     "&",
		EQL:           "=",
		NEQ:           "<>",
		GT:            ">",
		LT:            "<",
		GTE:           ">=",
		LTE:           "<=",
	}
	return data[k]
}

// OpClass is the coarse operator category of a token. Instruction
// selection keys off the class, not the token identity.
type OpClass int

const (
	OpNone OpClass = iota
	OpComparison
	OpArithmetic
	OpStringConcat
)

// Class returns the operator class of the token kind.
func (k TokenKind) Class() OpClass {
	switch k {
	case CARET, PLUS, MINUS, DIV, MUL:
		return OpArithmetic
	case EQL, NEQ, GT, LT, GTE, LTE:
		return OpComparison
	case AMPERSAND:
		return OpStringConcat
	}
	return OpNone
}

// Token is one lexical token. Constant tokens carry their decoded
// value; identifier and error tokens carry text. Start is the byte
// offset in the source where the token began.
type Token struct {
	Kind  TokenKind
	Text  string  // identifier text, decoded string constant, or error message
	Float float64 // value of a FLOAT_CONST
	Bool  bool    // value of a BOOLEAN_CONST
	Start int
}

func (t Token) IsCompOp() bool   { return t.Kind.Class() == OpComparison }
func (t Token) IsArithOp() bool  { return t.Kind.Class() == OpArithmetic }
func (t Token) IsStringOp() bool { return t.Kind.Class() == OpStringConcat }
