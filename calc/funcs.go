package calc

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi

	// maxFactorialArg keeps factorial, comb and perm from running away before the bit cap applies.
	maxFactorialArg = 10000
)

// constants are the only bare names an expression may reference.
var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
	"inf": math.Inf(1),
	"nan": math.NaN(),
}

type funcDef struct {
	minArgs int
	maxArgs int // -1: variadic
	call    func(args []Value) (Value, error)
}

func (f funcDef) arity() string {
	switch {
	case f.maxArgs < 0:
		return "at least " + strconv.Itoa(f.minArgs) + " arguments"
	case f.minArgs == f.maxArgs && f.minArgs == 1:
		return "exactly one argument"
	case f.minArgs == f.maxArgs:
		return "exactly " + strconv.Itoa(f.minArgs) + " arguments"
	default:
		return strconv.Itoa(f.minArgs) + " to " + strconv.Itoa(f.maxArgs) + " arguments"
	}
}

// functions is the call allow-list. Everything not listed here fails with ErrName.
var functions = map[string]funcDef{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"asinh": unary(math.Asinh),
	"acosh": unary(math.Acosh),
	"atanh": unary(math.Atanh),
	"atan2": binary(math.Atan2),

	"degrees": unaryRaw(func(x float64) float64 { return x * radToDeg }),
	"radians": unaryRaw(func(x float64) float64 { return x * degToRad }),

	"exp":   unary(math.Exp),
	"exp2":  unary(math.Exp2),
	"expm1": unary(math.Expm1),
	"log":   {minArgs: 1, maxArgs: 2, call: callLog},
	"log10": logFunc(math.Log10),
	"log2":  logFunc(math.Log2),
	"log1p": unary(math.Log1p),

	"sqrt":      unary(math.Sqrt),
	"cbrt":      unary(math.Cbrt),
	"pow":       {minArgs: 2, maxArgs: 2, call: func(args []Value) (Value, error) { return powValue(args[0], args[1]) }},
	"fabs":      unaryRaw(math.Abs),
	"copysign":  binary(math.Copysign),
	"fmod":      binary(math.Mod),
	"remainder": binary(math.Remainder),
	"hypot":     {minArgs: 0, maxArgs: -1, call: callHypot},
	"ldexp":     {minArgs: 2, maxArgs: 2, call: callLdexp},
	"nextafter": binary(math.Nextafter),

	"floor": integral("floor", math.Floor),
	"ceil":  integral("ceil", math.Ceil),
	"trunc": integral("trunc", math.Trunc),

	"erf":    unary(math.Erf),
	"erfc":   unary(math.Erfc),
	"gamma":  unary(math.Gamma),
	"lgamma": unary(func(x float64) float64 { l, _ := math.Lgamma(x); return l }),

	"factorial": {minArgs: 1, maxArgs: 1, call: callFactorial},
	"gcd":       {minArgs: 0, maxArgs: -1, call: callGCD},
	"lcm":       {minArgs: 0, maxArgs: -1, call: callLCM},
	"comb":      {minArgs: 2, maxArgs: 2, call: callComb},
	"perm":      {minArgs: 1, maxArgs: 2, call: callPerm},
	"isqrt":     {minArgs: 1, maxArgs: 1, call: callIsqrt},
}

// checked turns a float result into a Value, reporting a domain error when finite
// inputs produce NaN and an overflow when they produce an infinity.
func checked(r float64, in ...float64) (Value, error) {
	nanIn, infIn := false, false
	for _, x := range in {
		nanIn = nanIn || math.IsNaN(x)
		infIn = infIn || math.IsInf(x, 0)
	}
	if math.IsNaN(r) && !nanIn {
		return Value{}, ErrDomain
	}
	if math.IsInf(r, 0) && !infIn && !nanIn {
		return Value{}, ErrOverflow
	}
	return Float(r), nil
}

func unary(fn func(float64) float64) funcDef {
	return funcDef{minArgs: 1, maxArgs: 1, call: func(args []Value) (Value, error) {
		x, err := args[0].Float64()
		if err != nil {
			return Value{}, err
		}
		return checked(fn(x), x)
	}}
}

func unaryRaw(fn func(float64) float64) funcDef {
	return funcDef{minArgs: 1, maxArgs: 1, call: func(args []Value) (Value, error) {
		x, err := args[0].Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(fn(x)), nil
	}}
}

func binary(fn func(x, y float64) float64) funcDef {
	return funcDef{minArgs: 2, maxArgs: 2, call: func(args []Value) (Value, error) {
		x, y, err := floats(args[0], args[1])
		if err != nil {
			return Value{}, err
		}
		return checked(fn(x, y), x, y)
	}}
}

func integral(name string, round func(float64) float64) funcDef {
	return funcDef{minArgs: 1, maxArgs: 1, call: func(args []Value) (Value, error) {
		v := args[0]
		if v.kind == kindInt {
			return v, nil
		}
		switch {
		case math.IsNaN(v.f):
			return Value{}, fmt.Errorf("%w: %s: cannot convert NaN to integer", ErrDomain, name)
		case math.IsInf(v.f, 0):
			return Value{}, fmt.Errorf("%w: %s: cannot convert infinity to integer", ErrOverflow, name)
		}
		return floatToInt(round(v.f))
	}}
}

func floatToInt(f float64) (Value, error) {
	n, _ := new(big.Float).SetFloat64(f).Int(nil)
	return bigValue(n)
}

// logOf computes fn(v), staying accurate for integers beyond the float range.
func logOf(v Value, fn func(float64) float64) (float64, error) {
	if v.kind == kindInt {
		if v.i.Sign() <= 0 {
			return 0, ErrDomain
		}
		if v.i.BitLen() > 1000 {
			k := v.i.BitLen() - 64
			m, _ := new(big.Float).SetInt(new(big.Int).Rsh(v.i, uint(k))).Float64()
			return fn(m) + float64(k)*fn(2), nil
		}
	}
	x, err := v.Float64()
	if err != nil {
		return 0, err
	}
	if x > 0 && x < 0x1p-1022 {
		// math.Log and math.Log10 lose accuracy on subnormals; scale first.
		frac, exp := math.Frexp(x)
		return fn(frac) + float64(exp)*fn(2), nil
	}
	r, err := checked(fn(x), x)
	if err != nil {
		// log(0) is a domain error, not an overflow.
		return 0, ErrDomain
	}
	return r.f, nil
}

func logFunc(fn func(float64) float64) funcDef {
	return funcDef{minArgs: 1, maxArgs: 1, call: func(args []Value) (Value, error) {
		r, err := logOf(args[0], fn)
		if err != nil {
			return Value{}, err
		}
		return Float(r), nil
	}}
}

func callLog(args []Value) (Value, error) {
	num, err := logOf(args[0], math.Log)
	if err != nil {
		return Value{}, err
	}
	if len(args) == 1 {
		return Float(num), nil
	}
	den, err := logOf(args[1], math.Log)
	if err != nil {
		return Value{}, err
	}
	if den == 0 {
		return Value{}, fmt.Errorf("%w: log base 1", ErrDivisionByZero)
	}
	return Float(num / den), nil
}

func callHypot(args []Value) (Value, error) {
	var xs []float64
	var peak float64
	nan := false
	for _, a := range args {
		x, err := a.Float64()
		if err != nil {
			return Value{}, err
		}
		x = math.Abs(x)
		if math.IsInf(x, 0) {
			return Float(math.Inf(1)), nil
		}
		if math.IsNaN(x) {
			nan = true
		}
		if x > peak {
			peak = x
		}
		xs = append(xs, x)
	}
	if nan {
		return Float(math.NaN()), nil
	}
	if peak == 0 {
		return Float(0), nil
	}
	var sum float64
	for _, x := range xs {
		s := x / peak
		sum += s * s
	}
	return Float(peak * math.Sqrt(sum)), nil
}

func callLdexp(args []Value) (Value, error) {
	x, err := args[0].Float64()
	if err != nil {
		return Value{}, err
	}
	i, err := intArg("ldexp", args[1])
	if err != nil {
		return Value{}, err
	}
	exp := 0
	switch {
	case i.Cmp(big.NewInt(4096)) > 0:
		exp = 4096
	case i.Cmp(big.NewInt(-4096)) < 0:
		exp = -4096
	default:
		exp = int(i.Int64())
	}
	return checked(math.Ldexp(x, exp), x)
}

func intArg(name string, v Value) (*big.Int, error) {
	if v.kind != kindInt {
		return nil, fmt.Errorf("%w: %s() requires integer arguments", ErrArity, name)
	}
	return v.i, nil
}

func nonNegativeInt(name string, v Value) (int64, error) {
	n, err := intArg(name, v)
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s() not defined for negative values", ErrDomain, name)
	}
	if !n.IsInt64() || n.Int64() > maxFactorialArg*maxFactorialArg {
		return 0, fmt.Errorf("%w: %s() argument too large", ErrOverflow, name)
	}
	return n.Int64(), nil
}

func callFactorial(args []Value) (Value, error) {
	n, err := nonNegativeInt("factorial", args[0])
	if err != nil {
		return Value{}, err
	}
	return factorial(n)
}

func factorial(n int64) (Value, error) {
	if n > maxFactorialArg {
		return Value{}, fmt.Errorf("%w: factorial() argument too large", ErrOverflow)
	}
	if n < 2 {
		return Int(1), nil
	}
	return bigValue(new(big.Int).MulRange(1, n))
}

func callGCD(args []Value) (Value, error) {
	g := new(big.Int)
	for _, a := range args {
		n, err := intArg("gcd", a)
		if err != nil {
			return Value{}, err
		}
		g.GCD(nil, nil, g, n)
	}
	return Value{kind: kindInt, i: g}, nil
}

func callLCM(args []Value) (Value, error) {
	l := big.NewInt(1)
	for _, a := range args {
		n, err := intArg("lcm", a)
		if err != nil {
			return Value{}, err
		}
		if n.Sign() == 0 || l.Sign() == 0 {
			l.SetInt64(0)
			continue
		}
		g := new(big.Int).GCD(nil, nil, l, n)
		l.Mul(l, new(big.Int).Abs(n))
		l.Quo(l, g)
		if l.BitLen() > maxIntBits {
			return Value{}, fmt.Errorf("%w: lcm() result too large", ErrOverflow)
		}
	}
	return Value{kind: kindInt, i: l}, nil
}

// boundedProductBits estimates the bit size of a k-term product of values at most n.
func boundedProductBits(n, k int64) float64 {
	if n < 2 || k <= 0 {
		return 0
	}
	return float64(k) * math.Log2(float64(n))
}

func callComb(args []Value) (Value, error) {
	n, err := nonNegativeInt("comb", args[0])
	if err != nil {
		return Value{}, err
	}
	k, err := nonNegativeInt("comb", args[1])
	if err != nil {
		return Value{}, err
	}
	if k > n {
		return Int(0), nil
	}
	if n-k < k {
		k = n - k
	}
	if boundedProductBits(n, k) > 2*maxIntBits {
		return Value{}, fmt.Errorf("%w: comb() result too large", ErrOverflow)
	}
	return bigValue(new(big.Int).Binomial(n, k))
}

func callPerm(args []Value) (Value, error) {
	n, err := nonNegativeInt("perm", args[0])
	if err != nil {
		return Value{}, err
	}
	k := n
	if len(args) == 2 {
		if k, err = nonNegativeInt("perm", args[1]); err != nil {
			return Value{}, err
		}
	}
	if k > n {
		return Int(0), nil
	}
	if k == 0 {
		return Int(1), nil
	}
	if boundedProductBits(n, k) > 2*maxIntBits {
		return Value{}, fmt.Errorf("%w: perm() result too large", ErrOverflow)
	}
	return bigValue(new(big.Int).MulRange(n-k+1, n))
}

func callIsqrt(args []Value) (Value, error) {
	n, err := intArg("isqrt", args[0])
	if err != nil {
		return Value{}, err
	}
	if n.Sign() < 0 {
		return Value{}, fmt.Errorf("%w: isqrt() argument must be non-negative", ErrDomain)
	}
	return Value{kind: kindInt, i: new(big.Int).Sqrt(n)}, nil
}
