package errors

import (
	"fmt"

	"github.com/katsu/eqlang/types"
)

// Lex is a lexical fault reported by the tokenizer through an error
// token and converted into an error at the parse boundary.
type Lex struct {
	Msg string
	Pos int
}

func (e Lex) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

// Syntax reports an unexpected token.
type Syntax struct {
	Expected []types.TokenKind
	Got      types.TokenKind
	Pos      int
}

func (e Syntax) Error() string {
	return fmt.Sprintf("offset %d: got %s, expected one of %s", e.Pos, e.Got, e.Expected)
}

// OperandMissing reports a node built without a required child.
type OperandMissing struct {
	Node string
	Pos  int
}

func (e OperandMissing) Error() string {
	return fmt.Sprintf("offset %d: %s is missing an operand", e.Pos, e.Node)
}

// OperandTypeMismatch reports a binary node whose operands have
// different types.
type OperandTypeMismatch struct {
	Node        string
	Left, Right types.ValueType
	Pos         int
}

func (e OperandTypeMismatch) Error() string {
	return fmt.Sprintf("offset %d: %s operands must have the same type, got %s and %s",
		e.Pos, e.Node, e.Left, e.Right)
}

// BadOperandType reports an operand whose type the node cannot accept.
type BadOperandType struct {
	Node string
	Got  types.ValueType
	Pos  int
}

func (e BadOperandType) Error() string {
	return fmt.Sprintf("offset %d: %s cannot be applied to a %s operand", e.Pos, e.Node, e.Got)
}

// BadConversion reports an implicit conversion from an unsupported
// source type.
type BadConversion struct {
	Node string
	From types.ValueType
}

func (e BadConversion) Error() string {
	return fmt.Sprintf("%s cannot convert from %s", e.Node, e.From)
}

// UntypedAttribute reports an attribute reference without a usable
// declared type.
type UntypedAttribute struct {
	Name string
	Pos  int
}

func (e UntypedAttribute) Error() string {
	return fmt.Sprintf("offset %d: attribute %q has no declared type", e.Pos, e.Name)
}

// UnknownAttribute reports a reference to an attribute that is in the
// schema of no record and has no default to take a type from.
type UnknownAttribute struct {
	Name string
	Pos  int
}

func (e UnknownAttribute) Error() string {
	return fmt.Sprintf("offset %d: unknown attribute %q and no default value given", e.Pos, e.Name)
}

// DefaultTypeMismatch reports an attribute default whose type differs
// from the attribute's declared type.
type DefaultTypeMismatch struct {
	Name      string
	Want, Got types.ValueType
	Pos       int
}

func (e DefaultTypeMismatch) Error() string {
	return fmt.Sprintf("offset %d: default for attribute %q must be a %s, got a %s",
		e.Pos, e.Name, e.Want, e.Got)
}

// UnknownFunction reports a call to a name the registry cannot resolve.
type UnknownFunction struct {
	Name string
	Pos  int
}

func (e UnknownFunction) Error() string {
	return fmt.Sprintf("offset %d: call to unknown function %q", e.Pos, e.Name)
}

// NoMatchingSignature reports a call whose arity or argument types fit
// none of the function's signatures.
type NoMatchingSignature struct {
	Name  string
	Usage string
	Args  []types.ValueType
	Pos   int
}

func (e NoMatchingSignature) Error() string {
	return fmt.Sprintf("offset %d: %s cannot be called with arguments %v. %s",
		e.Pos, e.Name, e.Args, e.Usage)
}

// Internal is an invariant violation: an operator or type reached a
// point the construction checks were supposed to make unreachable. It
// indicates a compiler bug, never bad user input, and is panicked
// rather than returned until the codegen boundary converts it.
type Internal struct {
	Msg string
}

func (e *Internal) Error() string {
	return "internal: " + e.Msg
}

// Internalf builds an Internal fault.
func Internalf(format string, args ...interface{}) *Internal {
	return &Internal{Msg: fmt.Sprintf(format, args...)}
}
