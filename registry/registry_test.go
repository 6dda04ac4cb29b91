package registry

import (
	"math"
	"sort"
	"testing"

	"github.com/katsu/eqlang/types"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	r := Builtins()
	for _, name := range []string{"LN", "ln", "Ln"} {
		if r.Lookup(name) == nil {
			t.Fatalf("Lookup(%q) returned nil", name)
		}
	}
	if r.Lookup("NO_SUCH_FUNCTION") != nil {
		t.Fatalf("lookup of an unregistered name succeeded")
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := New()
	first := mathFn("F", "first", func(x float64) (float64, error) { return x, nil })
	second := mathFn("f", "second", func(x float64) (float64, error) { return -x, nil })
	r.Register(first)
	r.Register(second)

	got := r.Lookup("F")
	if got == nil || got.Summary() != "second" {
		t.Fatalf("lookup returned the replaced function")
	}
	if len(r.All()) != 1 {
		t.Fatalf("registry holds %d functions, want 1", len(r.All()))
	}
}

func TestAllIsSortedByName(t *testing.T) {
	all := Builtins().All()
	if len(all) == 0 {
		t.Fatalf("no builtins registered")
	}
	names := make([]string, len(all))
	for i, fn := range all {
		names[i] = fn.Name()
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names out of order: %v", names)
	}
}

func TestMathFnValidation(t *testing.T) {
	ln := Builtins().Lookup("LN")

	cases := []struct {
		args []types.ValueType
		want types.ValueType
	}{
		{[]types.ValueType{types.Float}, types.Float},
		{[]types.ValueType{types.Int}, types.Float},
		{[]types.ValueType{types.String}, types.NoType},
		{[]types.ValueType{types.Boolean}, types.NoType},
		{nil, types.NoType},
		{[]types.ValueType{types.Float, types.Float}, types.NoType},
	}
	for _, c := range cases {
		if got := ln.ValidateArgTypes(c.args); got != c.want {
			t.Fatalf("LN%v: got %s, want %s", c.args, got, c.want)
		}
	}
}

func TestMathFnDomainErrors(t *testing.T) {
	r := Builtins()
	cases := []struct {
		name string
		arg  float64
	}{
		{"LN", 0},
		{"LN", -1},
		{"LOG", 0},
		{"SQRT", -4},
	}
	for _, c := range cases {
		_, err := r.Lookup(c.name).Call([]types.Value{types.FloatValue(c.arg)})
		if err == nil {
			t.Fatalf("%s(%g) succeeded", c.name, c.arg)
		}
	}

	out, err := r.Lookup("LN").Call([]types.Value{types.FloatValue(math.E)})
	if err != nil {
		t.Fatalf("LN(e): %v", err)
	}
	if math.Abs(out.Float-1) > 1e-12 {
		t.Fatalf("LN(e) = %g, want 1", out.Float)
	}
}

func TestIntArgumentsWiden(t *testing.T) {
	out, err := Builtins().Lookup("SQRT").Call([]types.Value{types.IntValue(9)})
	if err != nil {
		t.Fatalf("SQRT(9): %v", err)
	}
	if out.Float != 3 {
		t.Fatalf("SQRT(9) = %g, want 3", out.Float)
	}
}

func TestModByZero(t *testing.T) {
	mod := Builtins().Lookup("MOD")
	if _, err := mod.Call([]types.Value{types.FloatValue(5), types.FloatValue(0)}); err == nil {
		t.Fatalf("MOD(5, 0) succeeded")
	}
	out, err := mod.Call([]types.Value{types.FloatValue(7), types.FloatValue(3)})
	if err != nil {
		t.Fatalf("MOD(7, 3): %v", err)
	}
	if out.Float != 1 {
		t.Fatalf("MOD(7, 3) = %g, want 1", out.Float)
	}
}

func TestMinMaxAreVariadic(t *testing.T) {
	r := Builtins()
	args := []types.Value{types.FloatValue(3), types.FloatValue(1), types.FloatValue(2)}

	out, err := r.Lookup("MIN").Call(args)
	if err != nil || out.Float != 1 {
		t.Fatalf("MIN = %s, %v", out, err)
	}
	out, err = r.Lookup("MAX").Call(args)
	if err != nil || out.Float != 3 {
		t.Fatalf("MAX = %s, %v", out, err)
	}

	if got := r.Lookup("MIN").ValidateArgTypes(nil); got != types.NoType {
		t.Fatalf("MIN() validated to %s", got)
	}
}

func TestStringFunctions(t *testing.T) {
	r := Builtins()

	out, err := r.Lookup("LEN").Call([]types.Value{types.StringValue("abc")})
	if err != nil || out != types.IntValue(3) {
		t.Fatalf("LEN = %s, %v", out, err)
	}
	out, err = r.Lookup("UPPER").Call([]types.Value{types.StringValue("abc")})
	if err != nil || out.Str != "ABC" {
		t.Fatalf("UPPER = %s, %v", out, err)
	}
	out, err = r.Lookup("TRIM").Call([]types.Value{types.StringValue("  x ")})
	if err != nil || out.Str != "x" {
		t.Fatalf("TRIM = %s, %v", out, err)
	}

	if got := r.Lookup("LEN").ValidateArgTypes([]types.ValueType{types.Float}); got != types.NoType {
		t.Fatalf("LEN(float) validated to %s", got)
	}
}

func TestIfResolvesItsReturnType(t *testing.T) {
	cond := Builtins().Lookup("IF")
	if cond.ReturnType() != types.Dynamic {
		t.Fatalf("declared return type is %s, want dynamic", cond.ReturnType())
	}

	got := cond.ValidateArgTypes([]types.ValueType{types.Boolean, types.String, types.String})
	if got != types.String {
		t.Fatalf("IF(boolean, string, string) validated to %s", got)
	}
	got = cond.ValidateArgTypes([]types.ValueType{types.Boolean, types.String, types.Float})
	if got != types.NoType {
		t.Fatalf("mismatched branches validated to %s", got)
	}
	got = cond.ValidateArgTypes([]types.ValueType{types.Float, types.String, types.String})
	if got != types.NoType {
		t.Fatalf("non-boolean condition validated to %s", got)
	}

	out, err := cond.Call([]types.Value{
		types.BoolValue(false), types.StringValue("a"), types.StringValue("b"),
	})
	if err != nil || out.Str != "b" {
		t.Fatalf("IF(FALSE, a, b) = %s, %v", out, err)
	}
}

func TestNot(t *testing.T) {
	not := Builtins().Lookup("NOT")
	out, err := not.Call([]types.Value{types.BoolValue(true)})
	if err != nil || out.Bool {
		t.Fatalf("NOT(TRUE) = %s, %v", out, err)
	}
}
