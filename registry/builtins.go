package registry

import (
	"fmt"
	"math"
	"strings"

	"github.com/katsu/eqlang/types"
)

// builtin implements types.Function with plain closures.
type builtin struct {
	name     string
	summary  string
	usage    string
	ret      types.ValueType
	validate func(args []types.ValueType) types.ValueType
	call     func(args []types.Value) (types.Value, error)
}

func (b *builtin) Name() string                { return b.name }
func (b *builtin) Summary() string             { return b.summary }
func (b *builtin) Usage() string               { return b.usage }
func (b *builtin) ReturnType() types.ValueType { return b.ret }

func (b *builtin) ValidateArgTypes(args []types.ValueType) types.ValueType {
	return b.validate(args)
}

func (b *builtin) Call(args []types.Value) (types.Value, error) {
	return b.call(args)
}

func numeric(t types.ValueType) bool {
	return t == types.Float || t == types.Int
}

// argFloat reads a numeric argument, widening ints.
func argFloat(v types.Value) float64 {
	if v.Type == types.Int {
		return float64(v.Int)
	}
	return v.Float
}

// oneNumeric is the validator shared by the single-argument math
// functions: one int or float in, float out.
func oneNumeric(args []types.ValueType) types.ValueType {
	if len(args) != 1 || !numeric(args[0]) {
		return types.NoType
	}
	return types.Float
}

func allNumeric(args []types.ValueType) types.ValueType {
	if len(args) == 0 {
		return types.NoType
	}
	for _, t := range args {
		if !numeric(t) {
			return types.NoType
		}
	}
	return types.Float
}

func mathFn(name, summary string, f func(float64) (float64, error)) *builtin {
	return &builtin{
		name:     name,
		summary:  summary,
		usage:    fmt.Sprintf("Call with %s(number).", name),
		ret:      types.Float,
		validate: oneNumeric,
		call: func(args []types.Value) (types.Value, error) {
			out, err := f(argFloat(args[0]))
			if err != nil {
				return types.Value{}, err
			}
			return types.FloatValue(out), nil
		},
	}
}

// Builtins returns a registry preloaded with the standard functions.
func Builtins() *Registry {
	r := New()

	r.Register(mathFn("LN", "Calculates the natural logarithm of its argument.",
		func(x float64) (float64, error) {
			if x <= 0 {
				return 0, fmt.Errorf("LN: argument must be positive, got %g", x)
			}
			return math.Log(x), nil
		}))
	r.Register(mathFn("LOG", "Calculates the base-10 logarithm of its argument.",
		func(x float64) (float64, error) {
			if x <= 0 {
				return 0, fmt.Errorf("LOG: argument must be positive, got %g", x)
			}
			return math.Log10(x), nil
		}))
	r.Register(mathFn("EXP", "Raises e to the power of its argument.",
		func(x float64) (float64, error) { return math.Exp(x), nil }))
	r.Register(mathFn("SQRT", "Calculates the square root of its argument.",
		func(x float64) (float64, error) {
			if x < 0 {
				return 0, fmt.Errorf("SQRT: argument must not be negative, got %g", x)
			}
			return math.Sqrt(x), nil
		}))
	r.Register(mathFn("ABS", "Calculates the absolute value of its argument.",
		func(x float64) (float64, error) { return math.Abs(x), nil }))

	r.Register(&builtin{
		name:     "MOD",
		summary:  "Calculates the remainder of dividing its first argument by its second.",
		usage:    "Call with MOD(number, divisor).",
		ret:      types.Float,
		validate: func(args []types.ValueType) types.ValueType {
			if len(args) != 2 || !numeric(args[0]) || !numeric(args[1]) {
				return types.NoType
			}
			return types.Float
		},
		call: func(args []types.Value) (types.Value, error) {
			d := argFloat(args[1])
			if d == 0 {
				return types.Value{}, fmt.Errorf("MOD: division by zero")
			}
			return types.FloatValue(math.Mod(argFloat(args[0]), d)), nil
		},
	})

	r.Register(&builtin{
		name:     "MIN",
		summary:  "Returns the smallest of its arguments.",
		usage:    "Call with MIN(number, ...).",
		ret:      types.Float,
		validate: allNumeric,
		call: func(args []types.Value) (types.Value, error) {
			out := argFloat(args[0])
			for _, a := range args[1:] {
				out = math.Min(out, argFloat(a))
			}
			return types.FloatValue(out), nil
		},
	})
	r.Register(&builtin{
		name:     "MAX",
		summary:  "Returns the largest of its arguments.",
		usage:    "Call with MAX(number, ...).",
		ret:      types.Float,
		validate: allNumeric,
		call: func(args []types.Value) (types.Value, error) {
			out := argFloat(args[0])
			for _, a := range args[1:] {
				out = math.Max(out, argFloat(a))
			}
			return types.FloatValue(out), nil
		},
	})

	r.Register(&builtin{
		name:    "LEN",
		summary: "Returns the length of a string.",
		usage:   "Call with LEN(text).",
		ret:     types.Int,
		validate: func(args []types.ValueType) types.ValueType {
			if len(args) != 1 || args[0] != types.String {
				return types.NoType
			}
			return types.Int
		},
		call: func(args []types.Value) (types.Value, error) {
			return types.IntValue(int64(len(args[0].Str))), nil
		},
	})

	stringFn := func(name, summary string, f func(string) string) *builtin {
		return &builtin{
			name:    name,
			summary: summary,
			usage:   fmt.Sprintf("Call with %s(text).", name),
			ret:     types.String,
			validate: func(args []types.ValueType) types.ValueType {
				if len(args) != 1 || args[0] != types.String {
					return types.NoType
				}
				return types.String
			},
			call: func(args []types.Value) (types.Value, error) {
				return types.StringValue(f(args[0].Str)), nil
			},
		}
	}
	r.Register(stringFn("UPPER", "Converts a string to upper case.", strings.ToUpper))
	r.Register(stringFn("LOWER", "Converts a string to lower case.", strings.ToLower))
	r.Register(stringFn("TRIM", "Removes leading and trailing whitespace from a string.", strings.TrimSpace))

	r.Register(&builtin{
		name:    "NOT",
		summary: "Negates a boolean.",
		usage:   "Call with NOT(condition).",
		ret:     types.Boolean,
		validate: func(args []types.ValueType) types.ValueType {
			if len(args) != 1 || args[0] != types.Boolean {
				return types.NoType
			}
			return types.Boolean
		},
		call: func(args []types.Value) (types.Value, error) {
			return types.BoolValue(!args[0].Bool), nil
		},
	})

	r.Register(&builtin{
		name:    "IF",
		summary: "Returns its second argument when the condition holds, else its third.",
		usage:   "Call with IF(condition, then, else) where then and else have the same type.",
		ret:     types.Dynamic,
		validate: func(args []types.ValueType) types.ValueType {
			if len(args) != 3 || args[0] != types.Boolean || args[1] != args[2] {
				return types.NoType
			}
			return args[1]
		},
		call: func(args []types.Value) (types.Value, error) {
			if args[0].Bool {
				return args[1], nil
			}
			return args[2], nil
		},
	})

	return r
}
