package ast

import (
	"github.com/katsu/eqlang/errors"
	"github.com/katsu/eqlang/types"
)

// Node is one typed expression in a parsed formula tree. Trees are
// built bottom-up and never change afterwards; a node's type is fixed
// when it is constructed.
type Node interface {
	// Pos returns the source offset the node was parsed from, or
	// types.NoLocation for compiler-synthesized conversions.
	Pos() int

	// Type returns the node's result type.
	Type() types.ValueType

	// Left and Right return the node's children, nil where a variant
	// has none.
	Left() Node
	Right() Node

	// GenCode appends the node's instructions to prog. It reads the
	// tree but never changes it.
	GenCode(prog *types.Program)
}

type base struct {
	pos int
}

func (b base) Pos() int    { return b.pos }
func (b base) Left() Node  { return nil }
func (b base) Right() Node { return nil }

// BinaryOp applies an arithmetic, comparison or concatenation operator
// to two operands of identical type.
type BinaryOp struct {
	base
	op       types.Token
	lhs, rhs Node
	typ      types.ValueType
}

func NewBinaryOp(pos int, op types.Token, lhs, rhs Node) (*BinaryOp, error) {
	if lhs == nil || rhs == nil {
		return nil, errors.OperandMissing{Node: "binary operator", Pos: pos}
	}
	if lhs.Type() != rhs.Type() {
		return nil, errors.OperandTypeMismatch{
			Node: "binary operator " + op.Kind.String(),
			Left: lhs.Type(), Right: rhs.Type(), Pos: pos,
		}
	}

	typ := lhs.Type()
	if op.IsCompOp() {
		typ = types.Boolean
	}
	return &BinaryOp{base: base{pos}, op: op, lhs: lhs, rhs: rhs, typ: typ}, nil
}

func (n *BinaryOp) Type() types.ValueType { return n.typ }
func (n *BinaryOp) Left() Node            { return n.lhs }
func (n *BinaryOp) Right() Node           { return n.rhs }
func (n *BinaryOp) Operator() types.Token { return n.op }

func (n *BinaryOp) GenCode(prog *types.Program) {
	// Right operand first: at run time the left operand ends up on top
	// of the stack.
	n.rhs.GenCode(prog)
	n.lhs.GenCode(prog)

	switch n.op.Kind {
	case types.CARET:
		prog.Emit(n.arith(types.FPOW), n.pos)
	case types.PLUS:
		prog.Emit(n.arith(types.FADD), n.pos)
	case types.MINUS:
		prog.Emit(n.arith(types.FSUB), n.pos)
	case types.DIV:
		prog.Emit(n.arith(types.FDIV), n.pos)
	case types.MUL:
		prog.Emit(n.arith(types.FMUL), n.pos)
	case types.AMPERSAND:
		if n.lhs.Type() != types.String {
			panic(errors.Internalf("offset %d: concatenation of %s operands", n.pos, n.lhs.Type()))
		}
		prog.Emit(types.SCONCAT, n.pos)
	case types.EQL:
		prog.Emit(n.compare(types.BEQLF, types.BEQLS, types.BEQLB, types.BEQLI), n.pos)
	case types.NEQ:
		prog.Emit(n.compare(types.BNEQLF, types.BNEQLS, types.BNEQLB, types.BNEQLI), n.pos)
	case types.GT:
		prog.Emit(n.compare(types.BGTF, types.BGTS, types.BGTB, types.BGTI), n.pos)
	case types.LT:
		prog.Emit(n.compare(types.BLTF, types.BLTS, types.BLTB, types.BLTI), n.pos)
	case types.GTE:
		prog.Emit(n.compare(types.BGTEF, types.BGTES, types.BGTEB, types.BGTEI), n.pos)
	case types.LTE:
		prog.Emit(n.compare(types.BLTEF, types.BLTES, types.BLTEB, types.BLTEI), n.pos)
	default:
		panic(errors.Internalf("offset %d: unknown binary operator %s", n.pos, n.op.Kind))
	}
}

// arith guards the float-only arithmetic opcodes.
func (n *BinaryOp) arith(op types.Instruction) types.Instruction {
	if n.lhs.Type() != types.Float {
		panic(errors.Internalf("offset %d: arithmetic on %s operands", n.pos, n.lhs.Type()))
	}
	return op
}

// compare picks one of four type-specialized opcodes from the left
// operand's type; construction guarantees both operands share it.
func (n *BinaryOp) compare(floatOp, stringOp, boolOp, intOp types.Instruction) types.Instruction {
	switch n.lhs.Type() {
	case types.Float:
		return floatOp
	case types.String:
		return stringOp
	case types.Boolean:
		return boolOp
	case types.Int:
		return intOp
	}
	panic(errors.Internalf("offset %d: comparison of %s operands", n.pos, n.lhs.Type()))
}

// UnaryOp applies unary plus or minus to a float operand.
type UnaryOp struct {
	base
	op      types.Token
	operand Node
}

func NewUnaryOp(pos int, op types.Token, operand Node) (*UnaryOp, error) {
	if operand == nil {
		return nil, errors.OperandMissing{Node: "unary operator", Pos: pos}
	}
	// Only float unary opcodes exist, so the operand type is pinned
	// here instead of letting code generation fail later.
	if operand.Type() != types.Float {
		return nil, errors.BadOperandType{
			Node: "unary " + op.Kind.String(),
			Got:  operand.Type(), Pos: pos,
		}
	}
	return &UnaryOp{base: base{pos}, op: op, operand: operand}, nil
}

func (n *UnaryOp) Type() types.ValueType { return n.operand.Type() }
func (n *UnaryOp) Left() Node            { return n.operand }
func (n *UnaryOp) Operator() types.Token { return n.op }

func (n *UnaryOp) GenCode(prog *types.Program) {
	n.operand.GenCode(prog)

	switch n.op.Kind {
	case types.PLUS:
		prog.Emit(types.FUPLUS, n.pos)
	case types.MINUS:
		prog.Emit(types.FUMINUS, n.pos)
	default:
		panic(errors.Internalf("offset %d: invalid unary operator %s", n.pos, n.op.Kind))
	}
}

// BooleanLiteral is a TRUE or FALSE constant.
type BooleanLiteral struct {
	base
	Value bool
}

func NewBooleanLiteral(pos int, value bool) *BooleanLiteral {
	return &BooleanLiteral{base: base{pos}, Value: value}
}

func (n *BooleanLiteral) Type() types.ValueType { return types.Boolean }

func (n *BooleanLiteral) GenCode(prog *types.Program) {
	prog.EmitPush(types.BoolValue(n.Value), n.pos)
}

// FloatLiteral is a numeric constant.
type FloatLiteral struct {
	base
	Value float64
}

func NewFloatLiteral(pos int, value float64) *FloatLiteral {
	return &FloatLiteral{base: base{pos}, Value: value}
}

func (n *FloatLiteral) Type() types.ValueType { return types.Float }

func (n *FloatLiteral) GenCode(prog *types.Program) {
	prog.EmitPush(types.FloatValue(n.Value), n.pos)
}

// StringLiteral is a string constant.
type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(pos int, value string) *StringLiteral {
	return &StringLiteral{base: base{pos}, Value: value}
}

func (n *StringLiteral) Type() types.ValueType { return types.String }

func (n *StringLiteral) GenCode(prog *types.Program) {
	prog.EmitPush(types.StringValue(n.Value), n.pos)
}

// AttributeRef looks up a named value in the record an equation runs
// against, optionally falling back to a default subtree's value.
type AttributeRef struct {
	base
	name string
	def  Node // may be nil
	typ  types.ValueType
}

func NewAttributeRef(pos int, name string, def Node, typ types.ValueType) (*AttributeRef, error) {
	if !typ.Concrete() {
		return nil, errors.UntypedAttribute{Name: name, Pos: pos}
	}
	if def != nil && def.Type() != typ {
		return nil, errors.DefaultTypeMismatch{
			Name: name, Want: typ, Got: def.Type(), Pos: pos,
		}
	}
	return &AttributeRef{base: base{pos}, name: name, def: def, typ: typ}, nil
}

func (n *AttributeRef) Type() types.ValueType { return n.typ }
func (n *AttributeRef) Left() Node            { return n.def }
func (n *AttributeRef) Name() string          { return n.name }
func (n *AttributeRef) Default() Node         { return n.def }

func (n *AttributeRef) GenCode(prog *types.Program) {
	if n.def != nil {
		n.def.GenCode(prog)
	}
	prog.EmitPush(types.StringValue(n.name), types.NoLocation)
	if n.def != nil {
		prog.Emit(types.AREF2, n.pos)
	} else {
		prog.Emit(types.AREF, n.pos)
	}
}

// FunctionCall invokes a function resolved by the registry. Arity and
// argument types have already been validated by ValidateArgTypes, which
// also produced the concrete result type.
type FunctionCall struct {
	base
	fn   types.Function
	typ  types.ValueType
	args []Node
}

func NewFunctionCall(pos int, fn types.Function, result types.ValueType, args []Node) (*FunctionCall, error) {
	if fn == nil {
		return nil, errors.OperandMissing{Node: "function call", Pos: pos}
	}
	if !result.Concrete() {
		return nil, errors.NoMatchingSignature{Name: fn.Name(), Usage: fn.Usage(), Pos: pos}
	}
	for _, arg := range args {
		if arg == nil {
			return nil, errors.OperandMissing{Node: "call to " + fn.Name(), Pos: pos}
		}
	}
	return &FunctionCall{base: base{pos}, fn: fn, typ: result, args: args}, nil
}

func (n *FunctionCall) Type() types.ValueType    { return n.typ }
func (n *FunctionCall) Function() types.Function { return n.fn }
func (n *FunctionCall) Args() []Node             { return n.args }

func (n *FunctionCall) GenCode(prog *types.Program) {
	// Arguments go out last-first so the interpreter pops them back in
	// declaration order at the CALL.
	for i := len(n.args) - 1; i >= 0; i-- {
		n.args[i].GenCode(prog)
	}
	prog.EmitPush(types.IntValue(int64(len(n.args))), types.NoLocation)
	prog.EmitFn(n.fn)
	prog.Emit(types.CALL, n.pos)
}

// FloatConv is a compiler-synthesized conversion of an int, boolean or
// string value to a float. It has no source location of its own.
type FloatConv struct {
	base
	convertee Node
}

func NewFloatConv(convertee Node) (*FloatConv, error) {
	if convertee == nil {
		return nil, errors.OperandMissing{Node: "float conversion", Pos: types.NoLocation}
	}
	switch convertee.Type() {
	case types.Int, types.Boolean, types.String:
	default:
		return nil, errors.BadConversion{Node: "float conversion", From: convertee.Type()}
	}
	return &FloatConv{base: base{types.NoLocation}, convertee: convertee}, nil
}

func (n *FloatConv) Type() types.ValueType { return types.Float }
func (n *FloatConv) Left() Node            { return n.convertee }

func (n *FloatConv) GenCode(prog *types.Program) {
	n.convertee.GenCode(prog)

	switch n.convertee.Type() {
	case types.Int:
		prog.Emit(types.FCONVI, n.pos)
	case types.Boolean:
		prog.Emit(types.FCONVB, n.pos)
	case types.String:
		prog.Emit(types.FCONVS, n.pos)
	default:
		panic(errors.Internalf("float conversion from %s", n.convertee.Type()))
	}
}

// StringConv is a compiler-synthesized conversion of a float, int or
// boolean value to a string.
type StringConv struct {
	base
	convertee Node
}

func NewStringConv(convertee Node) (*StringConv, error) {
	if convertee == nil {
		return nil, errors.OperandMissing{Node: "string conversion", Pos: types.NoLocation}
	}
	switch convertee.Type() {
	case types.Float, types.Int, types.Boolean:
	default:
		return nil, errors.BadConversion{Node: "string conversion", From: convertee.Type()}
	}
	return &StringConv{base: base{types.NoLocation}, convertee: convertee}, nil
}

func (n *StringConv) Type() types.ValueType { return types.String }
func (n *StringConv) Left() Node            { return n.convertee }

func (n *StringConv) GenCode(prog *types.Program) {
	n.convertee.GenCode(prog)

	switch n.convertee.Type() {
	case types.Float:
		prog.Emit(types.SCONVF, n.pos)
	case types.Int:
		prog.Emit(types.SCONVI, n.pos)
	case types.Boolean:
		prog.Emit(types.SCONVB, n.pos)
	default:
		panic(errors.Internalf("string conversion from %s", n.convertee.Type()))
	}
}
