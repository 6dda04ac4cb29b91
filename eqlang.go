// Package eqlang compiles and evaluates attribute equations: small
// formulas over the named, typed attributes of a record, with
// arithmetic, string concatenation, comparisons and function calls.
package eqlang

import (
	"github.com/katsu/eqlang/ast"
	"github.com/katsu/eqlang/codegen"
	"github.com/katsu/eqlang/lexer"
	"github.com/katsu/eqlang/parser"
	"github.com/katsu/eqlang/types"
	"github.com/katsu/eqlang/vm"
)

// Parse builds the typed expression tree for a formula. The schema
// supplies attribute types; reg resolves function names.
func Parse(source string, reg types.Registry, schema types.Schema) (ast.Node, error) {
	p := parser.New(lexer.New(source), reg, schema)
	return p.Parse()
}

// Compile parses a formula and generates its instruction sequence.
func Compile(source string, reg types.Registry, schema types.Schema) (types.Program, error) {
	root, err := Parse(source, reg, schema)
	if err != nil {
		return nil, err
	}
	return codegen.Generate(root)
}

// Eval compiles a formula and runs it against a record.
func Eval(source string, reg types.Registry, schema types.Schema, rec vm.Record) (types.Value, error) {
	prog, err := Compile(source, reg, schema)
	if err != nil {
		return types.Value{}, err
	}
	return vm.Run(prog, rec)
}

// SchemaOf derives a schema from the types of a record's values, for
// callers that don't declare one separately.
func SchemaOf(rec vm.Record) types.Schema {
	schema := make(types.Schema, len(rec))
	for name, v := range rec {
		schema[name] = v.Type
	}
	return schema
}
