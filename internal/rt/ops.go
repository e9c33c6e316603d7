package rt

import (
	"math"
	"strconv"

	"fortio.org/safecast"
)

// Numeric operations on values. Results are freshly owned. Defined-but-
// invalid operations (division or modulo by zero, out-of-range coercions)
// return the undef sentinel instead of trapping.

// ToNum coerces v to a float64.
func ToNum(v *Value) float64 {
	if v == nil {
		return 0
	}
	switch v.Kind {
	case KInt, KBool:
		return float64(v.Int)
	case KNum:
		return v.Num
	case KStr:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToInt coerces v to an int64. Fractions truncate toward zero; a float
// outside the int64 range coerces to zero.
func ToInt(v *Value) int64 {
	if v == nil {
		return 0
	}
	switch v.Kind {
	case KInt, KBool:
		return v.Int
	case KNum:
		n, err := safecast.Convert[int64](math.Trunc(v.Num))
		if err != nil {
			return 0
		}
		return n
	case KStr:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func bothInt(a, b *Value) bool {
	return a != nil && b != nil && a.Kind == KInt && b.Kind == KInt
}

// Add returns a + b with int arithmetic when both operands are ints and
// float arithmetic otherwise.
func Add(a, b *Value) *Value {
	if bothInt(a, b) {
		return NewInt(a.Int + b.Int)
	}
	return NewNum(ToNum(a) + ToNum(b))
}

// Sub returns a - b.
func Sub(a, b *Value) *Value {
	if bothInt(a, b) {
		return NewInt(a.Int - b.Int)
	}
	return NewNum(ToNum(a) - ToNum(b))
}

// Mul returns a * b.
func Mul(a, b *Value) *Value {
	if bothInt(a, b) {
		return NewInt(a.Int * b.Int)
	}
	return NewNum(ToNum(a) * ToNum(b))
}

// Div returns a / b, or undef when the divisor is zero.
func Div(a, b *Value) *Value {
	if bothInt(a, b) {
		if b.Int == 0 {
			return NewUndef()
		}
		if a.Int%b.Int == 0 {
			return NewInt(a.Int / b.Int)
		}
		return NewNum(float64(a.Int) / float64(b.Int))
	}
	d := ToNum(b)
	if d == 0 {
		return NewUndef()
	}
	return NewNum(ToNum(a) / d)
}

// Mod returns a % b on the integer interpretations, or undef when the
// divisor is zero.
func Mod(a, b *Value) *Value {
	d := ToInt(b)
	if d == 0 {
		return NewUndef()
	}
	return NewInt(ToInt(a) % d)
}

// Neg returns -v.
func Neg(v *Value) *Value {
	if v != nil && v.Kind == KInt {
		return NewInt(-v.Int)
	}
	return NewNum(-ToNum(v))
}

// Concat returns the string concatenation of a and b.
func Concat(a, b *Value) *Value {
	return NewStr(a.String() + b.String())
}
