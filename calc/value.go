package calc

import (
	"fmt"
	"math"
	"math/big"
)

// maxIntBits bounds exact integer results so a single expression cannot exhaust memory.
const maxIntBits = 1 << 16

type valueKind uint8

const (
	kindInt valueKind = iota
	kindFloat
)

// Value is an evaluation result: an exact integer or a float64.
type Value struct {
	kind valueKind
	i    *big.Int
	f    float64
}

func Int(n int64) Value { return Value{kind: kindInt, i: big.NewInt(n)} }

func Float(f float64) Value { return Value{kind: kindFloat, f: f} }

func bigValue(n *big.Int) (Value, error) {
	if n.BitLen() > maxIntBits {
		return Value{}, fmt.Errorf("%w: integer exceeds %d bits", ErrOverflow, maxIntBits)
	}
	return Value{kind: kindInt, i: n}, nil
}

// IsInt reports whether v holds an exact integer.
func (v Value) IsInt() bool { return v.kind == kindInt }

// BigInt returns the integer held by v, or nil for floats.
func (v Value) BigInt() *big.Int {
	if v.kind != kindInt {
		return nil
	}
	return new(big.Int).Set(v.i)
}

// Float64 converts v to a float64. Integers beyond the float range fail with ErrOverflow.
func (v Value) Float64() (float64, error) {
	if v.kind == kindFloat {
		return v.f, nil
	}
	f, _ := new(big.Float).SetInt(v.i).Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: int too large to convert to float", ErrOverflow)
	}
	return f, nil
}

func (v Value) isZero() bool {
	if v.kind == kindInt {
		return v.i.Sign() == 0
	}
	return v.f == 0
}

// String renders v the way the display shows it.
func (v Value) String() string { return Format(v) }
