package types

import "fmt"

// Instruction is one opcode of the stack machine the compiler targets.
type Instruction int

const (
	PUSH   Instruction = iota // push a constant Value
	PUSHFN                    // push a resolved function reference

	FADD // addition of two floating-point numbers
	FSUB // subtraction of two floating-point numbers
	FMUL // multiplication of two floating-point numbers
	FDIV // division of two floating-point numbers
	FPOW // exponentiation of two floating-point numbers

	SCONCAT // string concatenation

	BEQLF  // equality test for two floating-point numbers
	BNEQLF // inequality test for two floating-point numbers
	BGTF   // greater-than test for two floating-point numbers
	BLTF   // less-than test for two floating-point numbers
	BGTEF  // greater-than-or-equal test for two floating-point numbers
	BLTEF  // less-than-or-equal test for two floating-point numbers

	BEQLS  // equality test for strings
	BNEQLS // inequality test for strings
	BGTS   // lexicographically greater-than test for strings
	BLTS   // lexicographically less-than test for strings
	BGTES  // lexicographically greater-than-or-equal test for strings
	BLTES  // lexicographically less-than-or-equal test for strings

	BEQLB  // equality test for booleans
	BNEQLB // inequality test for booleans
	BGTB   // greater-than test for booleans
	BLTB   // less-than test for booleans
	BGTEB  // greater-than-or-equal test for booleans
	BLTEB  // less-than-or-equal test for booleans

	BEQLI  // equality test for integers
	BNEQLI // inequality test for integers
	BGTI   // greater-than test for integers
	BLTI   // less-than test for integers
	BGTEI  // greater-than-or-equal test for integers
	BLTEI  // less-than-or-equal test for integers

	CALL // function call

	FUMINUS // unary minus for a floating-point number
	FUPLUS  // unary plus for a floating-point number

	AREF  // attribute reference
	AREF2 // attribute reference with a default value

	FCONVI // conversion of an integer to floating point
	FCONVB // conversion of a boolean to floating point
	FCONVS // conversion of a string to floating point

	SCONVF // conversion of a floating-point number to a string
	SCONVI // conversion of an integer to a string
	SCONVB // conversion of a boolean to a string
)

var instructionNames = map[Instruction]string{
	PUSH: "PUSH", PUSHFN: "PUSHFN",
	FADD: "FADD", FSUB: "FSUB", FMUL: "FMUL", FDIV: "FDIV", FPOW: "FPOW",
	SCONCAT: "SCONCAT",
	BEQLF:   "BEQLF", BNEQLF: "BNEQLF", BGTF: "BGTF", BLTF: "BLTF", BGTEF: "BGTEF", BLTEF: "BLTEF",
	BEQLS: "BEQLS", BNEQLS: "BNEQLS", BGTS: "BGTS", BLTS: "BLTS", BGTES: "BGTES", BLTES: "BLTES",
	BEQLB: "BEQLB", BNEQLB: "BNEQLB", BGTB: "BGTB", BLTB: "BLTB", BGTEB: "BGTEB", BLTEB: "BLTEB",
	BEQLI: "BEQLI", BNEQLI: "BNEQLI", BGTI: "BGTI", BLTI: "BLTI", BGTEI: "BGTEI", BLTEI: "BLTEI",
	CALL:    "CALL",
	FUMINUS: "FUMINUS", FUPLUS: "FUPLUS",
	AREF: "AREF", AREF2: "AREF2",
	FCONVI: "FCONVI", FCONVB: "FCONVB", FCONVS: "FCONVS",
	SCONVF: "SCONVF", SCONVI: "SCONVI", SCONVB: "SCONVB",
}

func (i Instruction) String() string {
	if s, ok := instructionNames[i]; ok {
		return s
	}
	return fmt.Sprintf("Instruction(%d)", int(i))
}

// NoLocation marks code that was synthesized by the compiler and does
// not correspond to any position in the source text.
const NoLocation = -1

// Code is one emitted instruction paired with the source offset of the
// construct it was generated from.
type Code struct {
	Op  Instruction
	Val Value    // operand of a PUSH
	Fn  Function // operand of a PUSHFN
	Pos int
}

func (c Code) String() string {
	loc := ""
	if c.Pos != NoLocation {
		loc = fmt.Sprintf(" @%d", c.Pos)
	}
	switch c.Op {
	case PUSH:
		return fmt.Sprintf("PUSH %s%s", c.Val, loc)
	case PUSHFN:
		return fmt.Sprintf("PUSHFN %s%s", c.Fn.Name(), loc)
	}
	return c.Op.String() + loc
}

// Program is the ordered instruction sequence handed to the interpreter.
type Program []Code

func (p *Program) Emit(op Instruction, pos int) {
	*p = append(*p, Code{Op: op, Pos: pos})
}

func (p *Program) EmitPush(v Value, pos int) {
	*p = append(*p, Code{Op: PUSH, Val: v, Pos: pos})
}

func (p *Program) EmitFn(fn Function) {
	*p = append(*p, Code{Op: PUSHFN, Fn: fn, Pos: NoLocation})
}

func (p Program) String() string {
	out := ""
	for _, c := range p {
		out += c.String() + "\n"
	}
	return out
}
