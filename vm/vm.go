// Package vm executes compiled equation programs against a record of
// named attribute values.
package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/katsu/eqlang/types"
)

// Record holds the attribute values one evaluation runs against.
type Record map[string]types.Value

// Error is a runtime fault, carrying the source offset recorded on the
// faulting instruction.
type Error struct {
	Msg string
	Pos int
}

func (e Error) Error() string {
	if e.Pos == types.NoLocation {
		return "runtime error: " + e.Msg
	}
	return fmt.Sprintf("runtime error at offset %d: %s", e.Pos, e.Msg)
}

type machine struct {
	stack []types.Value
	fns   []types.Function
	pos   int // offset of the instruction being executed
}

// Run executes the program and returns the single value it leaves on
// the stack.
func Run(prog types.Program, rec Record) (types.Value, error) {
	m := &machine{}
	for _, c := range prog {
		m.pos = c.Pos
		if err := m.step(c, rec); err != nil {
			return types.Value{}, err
		}
	}
	if len(m.stack) != 1 {
		return types.Value{}, Error{
			Msg: fmt.Sprintf("program left %d values on the stack", len(m.stack)),
			Pos: types.NoLocation,
		}
	}
	return m.stack[0], nil
}

func (m *machine) fail(format string, args ...interface{}) error {
	return Error{Msg: fmt.Sprintf(format, args...), Pos: m.pos}
}

func (m *machine) push(v types.Value) {
	m.stack = append(m.stack, v)
}

func (m *machine) pop() (types.Value, error) {
	if len(m.stack) == 0 {
		return types.Value{}, m.fail("stack underflow")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *machine) popFloat() (float64, error) {
	v, err := m.pop()
	if err != nil {
		return 0, err
	}
	if v.Type != types.Float {
		return 0, m.fail("operand is a %s, not a float", v.Type)
	}
	return v.Float, nil
}

func (m *machine) popString() (string, error) {
	v, err := m.pop()
	if err != nil {
		return "", err
	}
	if v.Type != types.String {
		return "", m.fail("operand is a %s, not a string", v.Type)
	}
	return v.Str, nil
}

func (m *machine) popBool() (bool, error) {
	v, err := m.pop()
	if err != nil {
		return false, err
	}
	if v.Type != types.Boolean {
		return false, m.fail("operand is a %s, not a boolean", v.Type)
	}
	return v.Bool, nil
}

func (m *machine) popInt() (int64, error) {
	v, err := m.pop()
	if err != nil {
		return 0, err
	}
	if v.Type != types.Int {
		return 0, m.fail("operand is a %s, not an int", v.Type)
	}
	return v.Int, nil
}

// floatOp pops the left then the right operand and pushes f(l, r).
func (m *machine) floatOp(f func(l, r float64) float64) error {
	l, err := m.popFloat()
	if err != nil {
		return err
	}
	r, err := m.popFloat()
	if err != nil {
		return err
	}
	m.push(types.FloatValue(f(l, r)))
	return nil
}

func (m *machine) floatCmp(f func(l, r float64) bool) error {
	l, err := m.popFloat()
	if err != nil {
		return err
	}
	r, err := m.popFloat()
	if err != nil {
		return err
	}
	m.push(types.BoolValue(f(l, r)))
	return nil
}

func (m *machine) stringCmp(f func(l, r string) bool) error {
	l, err := m.popString()
	if err != nil {
		return err
	}
	r, err := m.popString()
	if err != nil {
		return err
	}
	m.push(types.BoolValue(f(l, r)))
	return nil
}

func (m *machine) intCmp(f func(l, r int64) bool) error {
	l, err := m.popInt()
	if err != nil {
		return err
	}
	r, err := m.popInt()
	if err != nil {
		return err
	}
	m.push(types.BoolValue(f(l, r)))
	return nil
}

// boolCmp compares booleans with FALSE ordered before TRUE.
func (m *machine) boolCmp(f func(l, r int64) bool) error {
	l, err := m.popBool()
	if err != nil {
		return err
	}
	r, err := m.popBool()
	if err != nil {
		return err
	}
	toInt := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}
	m.push(types.BoolValue(f(toInt(l), toInt(r))))
	return nil
}

func (m *machine) step(c types.Code, rec Record) error {
	switch c.Op {
	case types.PUSH:
		m.push(c.Val)
	case types.PUSHFN:
		m.fns = append(m.fns, c.Fn)

	case types.FADD:
		return m.floatOp(func(l, r float64) float64 { return l + r })
	case types.FSUB:
		return m.floatOp(func(l, r float64) float64 { return l - r })
	case types.FMUL:
		return m.floatOp(func(l, r float64) float64 { return l * r })
	case types.FDIV:
		return m.floatOp(func(l, r float64) float64 { return l / r })
	case types.FPOW:
		return m.floatOp(math.Pow)

	case types.SCONCAT:
		l, err := m.popString()
		if err != nil {
			return err
		}
		r, err := m.popString()
		if err != nil {
			return err
		}
		m.push(types.StringValue(l + r))

	case types.BEQLF:
		return m.floatCmp(func(l, r float64) bool { return l == r })
	case types.BNEQLF:
		return m.floatCmp(func(l, r float64) bool { return l != r })
	case types.BGTF:
		return m.floatCmp(func(l, r float64) bool { return l > r })
	case types.BLTF:
		return m.floatCmp(func(l, r float64) bool { return l < r })
	case types.BGTEF:
		return m.floatCmp(func(l, r float64) bool { return l >= r })
	case types.BLTEF:
		return m.floatCmp(func(l, r float64) bool { return l <= r })

	case types.BEQLS:
		return m.stringCmp(func(l, r string) bool { return l == r })
	case types.BNEQLS:
		return m.stringCmp(func(l, r string) bool { return l != r })
	case types.BGTS:
		return m.stringCmp(func(l, r string) bool { return l > r })
	case types.BLTS:
		return m.stringCmp(func(l, r string) bool { return l < r })
	case types.BGTES:
		return m.stringCmp(func(l, r string) bool { return l >= r })
	case types.BLTES:
		return m.stringCmp(func(l, r string) bool { return l <= r })

	case types.BEQLB:
		return m.boolCmp(func(l, r int64) bool { return l == r })
	case types.BNEQLB:
		return m.boolCmp(func(l, r int64) bool { return l != r })
	case types.BGTB:
		return m.boolCmp(func(l, r int64) bool { return l > r })
	case types.BLTB:
		return m.boolCmp(func(l, r int64) bool { return l < r })
	case types.BGTEB:
		return m.boolCmp(func(l, r int64) bool { return l >= r })
	case types.BLTEB:
		return m.boolCmp(func(l, r int64) bool { return l <= r })

	case types.BEQLI:
		return m.intCmp(func(l, r int64) bool { return l == r })
	case types.BNEQLI:
		return m.intCmp(func(l, r int64) bool { return l != r })
	case types.BGTI:
		return m.intCmp(func(l, r int64) bool { return l > r })
	case types.BLTI:
		return m.intCmp(func(l, r int64) bool { return l < r })
	case types.BGTEI:
		return m.intCmp(func(l, r int64) bool { return l >= r })
	case types.BLTEI:
		return m.intCmp(func(l, r int64) bool { return l <= r })

	case types.FUMINUS:
		v, err := m.popFloat()
		if err != nil {
			return err
		}
		m.push(types.FloatValue(-v))
	case types.FUPLUS:
		v, err := m.popFloat()
		if err != nil {
			return err
		}
		m.push(types.FloatValue(v))

	case types.AREF:
		name, err := m.popString()
		if err != nil {
			return err
		}
		v, ok := rec[name]
		if !ok {
			return m.fail("no attribute named %q", name)
		}
		m.push(v)

	case types.AREF2:
		name, err := m.popString()
		if err != nil {
			return err
		}
		def, err := m.pop()
		if err != nil {
			return err
		}
		if v, ok := rec[name]; ok {
			m.push(v)
		} else {
			m.push(def)
		}

	case types.FCONVI:
		v, err := m.popInt()
		if err != nil {
			return err
		}
		m.push(types.FloatValue(float64(v)))
	case types.FCONVB:
		v, err := m.popBool()
		if err != nil {
			return err
		}
		if v {
			m.push(types.FloatValue(1))
		} else {
			m.push(types.FloatValue(0))
		}
	case types.FCONVS:
		v, err := m.popString()
		if err != nil {
			return err
		}
		f, perr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if perr != nil {
			return m.fail("can't convert %q to a number", v)
		}
		m.push(types.FloatValue(f))

	case types.SCONVF:
		v, err := m.popFloat()
		if err != nil {
			return err
		}
		m.push(types.StringValue(strconv.FormatFloat(v, 'g', -1, 64)))
	case types.SCONVI:
		v, err := m.popInt()
		if err != nil {
			return err
		}
		m.push(types.StringValue(strconv.FormatInt(v, 10)))
	case types.SCONVB:
		v, err := m.popBool()
		if err != nil {
			return err
		}
		if v {
			m.push(types.StringValue("TRUE"))
		} else {
			m.push(types.StringValue("FALSE"))
		}

	case types.CALL:
		return m.call(c)

	default:
		return m.fail("unknown instruction %s", c.Op)
	}
	return nil
}

func (m *machine) call(c types.Code) error {
	if len(m.fns) == 0 {
		return m.fail("CALL without a function reference")
	}
	fn := m.fns[len(m.fns)-1]
	m.fns = m.fns[:len(m.fns)-1]

	argc, err := m.popInt()
	if err != nil {
		return err
	}
	if argc < 0 || int(argc) > len(m.stack) {
		return m.fail("%s: bad argument count %d", fn.Name(), argc)
	}

	// Arguments were compiled in reverse, so popping yields them in
	// declaration order.
	args := make([]types.Value, argc)
	for i := range args {
		v, err := m.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}

	out, err := fn.Call(args)
	if err != nil {
		return m.fail("%s", err)
	}
	m.push(out)
	return nil
}
