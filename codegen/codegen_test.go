package codegen

import (
	stderrors "errors"
	"testing"

	"github.com/katsu/eqlang/ast"
	"github.com/katsu/eqlang/errors"
	"github.com/katsu/eqlang/types"
)

func TestGenerate(t *testing.T) {
	root, err := ast.NewBinaryOp(2, types.Token{Kind: types.PLUS, Start: 2},
		ast.NewFloatLiteral(0, 1), ast.NewFloatLiteral(4, 2))
	if err != nil {
		t.Fatalf("NewBinaryOp: %v", err)
	}

	prog, err := Generate(root)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(prog) != 3 || prog[2].Op != types.FADD {
		t.Fatalf("unexpected program:\n%s", prog)
	}
}

func TestGenerateNilRoot(t *testing.T) {
	_, err := Generate(nil)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var internal *errors.Internal
	if !stderrors.As(err, &internal) {
		t.Fatalf("got %v, want an internal fault", err)
	}
}

func TestGenerateConvertsInternalPanics(t *testing.T) {
	// Identical string operands satisfy the construction checks, but no
	// string arithmetic opcode exists, so emission trips an invariant.
	root, err := ast.NewBinaryOp(2, types.Token{Kind: types.PLUS, Start: 2},
		ast.NewStringLiteral(0, "a"), ast.NewStringLiteral(4, "b"))
	if err != nil {
		t.Fatalf("NewBinaryOp: %v", err)
	}

	prog, err := Generate(root)
	if err == nil {
		t.Fatalf("expected an error, got:\n%s", prog)
	}
	var internal *errors.Internal
	if !stderrors.As(err, &internal) {
		t.Fatalf("got %v, want an internal fault", err)
	}
	if prog != nil {
		t.Fatalf("partial program returned alongside the error")
	}
}
