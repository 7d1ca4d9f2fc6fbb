package calc

// This file contains the AST and the arithmetic of the evaluator.

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Preprocess applies the input substitutions, in order: "^" to "**", "%" to "/100"
// and "ln(" to "log(". The percent rule is a blind textual replace, so "50%+10"
// becomes "50/100+10".
func Preprocess(raw string) string {
	s := strings.ReplaceAll(raw, "^", "**")
	s = strings.ReplaceAll(s, "%", "/100")
	return strings.ReplaceAll(s, "ln(", "log(")
}

// Eval preprocesses raw and evaluates it in the restricted namespace.
func Eval(raw string) (Value, error) {
	n, err := parse(Preprocess(raw))
	if err != nil {
		return Value{}, err
	}
	return n.eval()
}

type node interface {
	eval() (Value, error)
}

type nodeNumber struct{ v Value }

func (n nodeNumber) eval() (Value, error) { return n.v, nil }

type nodeIdent struct{ name string }

func (n nodeIdent) eval() (Value, error) {
	if c, ok := constants[n.name]; ok {
		return Float(c), nil
	}
	if _, ok := functions[n.name]; ok {
		return Value{}, fmt.Errorf("%w: function %q used without a call", ErrName, n.name)
	}
	return Value{}, fmt.Errorf("%w: %q", ErrName, n.name)
}

type nodeUnary struct {
	op tokenKind
	x  node
}

func (n nodeUnary) eval() (Value, error) {
	v, err := n.x.eval()
	if err != nil {
		return Value{}, err
	}
	if n.op == tokPlus {
		return v, nil
	}
	return negValue(v), nil
}

type nodeBinary struct {
	op    tokenKind
	left  node
	right node
}

func (n nodeBinary) eval() (Value, error) {
	a, err := n.left.eval()
	if err != nil {
		return Value{}, err
	}
	b, err := n.right.eval()
	if err != nil {
		return Value{}, err
	}
	switch n.op {
	case tokPlus:
		return addValue(a, b)
	case tokMinus:
		return subValue(a, b)
	case tokStar:
		return mulValue(a, b)
	case tokSlash:
		return divValue(a, b)
	case tokPow:
		return powValue(a, b)
	}
	return Value{}, fmt.Errorf("%w: unknown operator", ErrSyntax)
}

type nodeCall struct {
	name string
	args []node
}

func (n nodeCall) eval() (Value, error) {
	fn, ok := functions[n.name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q is not callable", ErrName, n.name)
	}
	if len(n.args) < fn.minArgs || (fn.maxArgs >= 0 && len(n.args) > fn.maxArgs) {
		return Value{}, fmt.Errorf("%w: %s() takes %s, got %d", ErrArity, n.name, fn.arity(), len(n.args))
	}
	args := make([]Value, len(n.args))
	for i, a := range n.args {
		v, err := a.eval()
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return fn.call(args)
}

func negValue(v Value) Value {
	if v.kind == kindInt {
		return Value{kind: kindInt, i: new(big.Int).Neg(v.i)}
	}
	return Float(-v.f)
}

// floats converts a binary operand pair for float arithmetic.
func floats(a, b Value) (float64, float64, error) {
	x, err := a.Float64()
	if err != nil {
		return 0, 0, err
	}
	y, err := b.Float64()
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func addValue(a, b Value) (Value, error) {
	if a.kind == kindInt && b.kind == kindInt {
		return bigValue(new(big.Int).Add(a.i, b.i))
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Value{}, err
	}
	return Float(x + y), nil
}

func subValue(a, b Value) (Value, error) {
	if a.kind == kindInt && b.kind == kindInt {
		return bigValue(new(big.Int).Sub(a.i, b.i))
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Value{}, err
	}
	return Float(x - y), nil
}

func mulValue(a, b Value) (Value, error) {
	if a.kind == kindInt && b.kind == kindInt {
		if a.i.BitLen()+b.i.BitLen() > maxIntBits+1 {
			return Value{}, fmt.Errorf("%w: integer product too large", ErrOverflow)
		}
		return bigValue(new(big.Int).Mul(a.i, b.i))
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Value{}, err
	}
	return Float(x * y), nil
}

// divValue is true division: the result is always a float.
func divValue(a, b Value) (Value, error) {
	if b.isZero() {
		return Value{}, ErrDivisionByZero
	}
	if a.kind == kindInt && b.kind == kindInt {
		q, _ := new(big.Rat).SetFrac(a.i, b.i).Float64()
		if math.IsInf(q, 0) {
			return Value{}, fmt.Errorf("%w: integer division result too large for a float", ErrOverflow)
		}
		return Float(q), nil
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Value{}, err
	}
	return Float(x / y), nil
}

func powValue(a, b Value) (Value, error) {
	if a.kind == kindInt && b.kind == kindInt {
		if b.i.Sign() >= 0 {
			return powInt(a.i, b.i)
		}
		if a.i.Sign() == 0 {
			return Value{}, fmt.Errorf("%w: 0 cannot be raised to a negative power", ErrDivisionByZero)
		}
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Value{}, err
	}
	return powFloat(x, y)
}

func powInt(base, exp *big.Int) (Value, error) {
	switch {
	case base.Sign() == 0 || base.CmpAbs(big.NewInt(1)) == 0:
		return bigValue(new(big.Int).Exp(base, exp, nil))
	case !exp.IsInt64() || exp.Int64() > maxIntBits || exp.Int64()*int64(base.BitLen()-1) > maxIntBits:
		return Value{}, fmt.Errorf("%w: integer power too large", ErrOverflow)
	}
	return bigValue(new(big.Int).Exp(base, exp, nil))
}

// powFloat follows float power semantics: 0 to a negative power divides by zero, a negative
// base with a fractional exponent has no real result, and overflow from finite operands fails.
func powFloat(x, y float64) (Value, error) {
	if y == 0 {
		return Float(1), nil
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		if x == 1 {
			return Float(1), nil
		}
		return Float(math.NaN()), nil
	}
	if x == 0 && y < 0 && !math.IsInf(y, 0) {
		return Value{}, fmt.Errorf("%w: 0.0 cannot be raised to a negative power", ErrDivisionByZero)
	}
	if x < 0 && !math.IsInf(x, 0) && !math.IsInf(y, 0) && y != math.Trunc(y) {
		return Value{}, fmt.Errorf("%w: negative number cannot be raised to a fractional power", ErrDomain)
	}
	r := math.Pow(x, y)
	if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
		return Value{}, fmt.Errorf("%w: power", ErrOverflow)
	}
	return Float(r), nil
}
