// Package codegen turns a finished expression tree into the instruction
// sequence the stack interpreter executes.
package codegen

import (
	"github.com/ztrue/tracerr"

	"github.com/katsu/eqlang/ast"
	"github.com/katsu/eqlang/errors"
	"github.com/katsu/eqlang/types"
)

// Generate walks the tree once and returns the emitted program. An
// invariant violation inside emission surfaces as a *errors.Internal
// wrapped with its stack trace; it means the tree the parser handed
// over was broken, not that the formula was.
func Generate(root ast.Node) (prog types.Program, err error) {
	if root == nil {
		return nil, tracerr.Wrap(errors.Internalf("codegen: nil root"))
	}

	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(*errors.Internal)
			if !ok {
				panic(r)
			}
			prog = nil
			err = tracerr.Wrap(fault)
		}
	}()

	root.GenCode(&prog)
	return prog, nil
}
