package vm

// op.go evaluates the op instruction's operators. Operands coerce to numbers first except for
// the equality operators, which compare values directly. Comparison results are exactly 0 or 1.

import "math"

// Operator identifies one of the op instruction's operators.
type Operator uint8

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpIdiv
	OpMod
	OpPow
	OpNot
	OpLand
	OpLessThan
	OpLessThanEq
	OpGreaterThan
	OpGreaterThanEq
	OpStrictEqual
	OpEqual
	OpNotEqual
	OpShl
	OpShr
	OpOr
	OpAnd
	OpXor
	OpFlip
	OpMax
	OpMin
	OpAbs
	OpLog
	OpLog10
	OpFloor
	OpCeil
	OpSqrt
	OpAngle
	OpLength
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpRand
)

// operatorTable maps the camelCase operator keywords to operators.
var operatorTable = map[string]Operator{
	"add":           OpAdd,
	"sub":           OpSub,
	"mul":           OpMul,
	"div":           OpDiv,
	"idiv":          OpIdiv,
	"mod":           OpMod,
	"pow":           OpPow,
	"not":           OpNot,
	"land":          OpLand,
	"lessThan":      OpLessThan,
	"lessThanEq":    OpLessThanEq,
	"greaterThan":   OpGreaterThan,
	"greaterThanEq": OpGreaterThanEq,
	"strictEqual":   OpStrictEqual,
	"equal":         OpEqual,
	"notEqual":      OpNotEqual,
	"shl":           OpShl,
	"shr":           OpShr,
	"or":            OpOr,
	"and":           OpAnd,
	"xor":           OpXor,
	"flip":          OpFlip,
	"max":           OpMax,
	"min":           OpMin,
	"abs":           OpAbs,
	"log":           OpLog,
	"log10":         OpLog10,
	"floor":         OpFloor,
	"ceil":          OpCeil,
	"sqrt":          OpSqrt,
	"angle":         OpAngle,
	"length":        OpLength,
	"sin":           OpSin,
	"cos":           OpCos,
	"tan":           OpTan,
	"asin":          OpAsin,
	"acos":          OpAcos,
	"atan":          OpAtan,
	"rand":          OpRand,
}

func bool01(b bool) Value {
	if b {
		return Num(1)
	}

	return Num(0)
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
func radians(deg float64) float64 { return deg * math.Pi / 180 }

// evalOperator computes op over the operands. Unary operators take only a; b is still parsed,
// matching the fixed four-slot form of the op instruction, but is not evaluated.
func (m *Machine) evalOperator(op Operator, a, b arg) (Value, error) {
	// The equality operators compare values without numeric coercion.
	switch op {
	case OpEqual, OpStrictEqual:
		return bool01(a.eval(m).Equal(b.eval(m))), nil
	case OpNotEqual:
		return bool01(!a.eval(m).Equal(b.eval(m))), nil
	}

	x, err := a.eval(m).AsNum()
	if err != nil {
		return Null(), err
	}

	// Unary operators never touch b.
	switch op {
	case OpNot:
		return bool01(math.Abs(x) < epsilon), nil
	case OpFlip:
		return Num(float64(^int64(x))), nil
	case OpAbs:
		return Num(math.Abs(x)), nil
	case OpLog:
		return Num(math.Log(x)), nil
	case OpLog10:
		return Num(math.Log10(x)), nil
	case OpFloor:
		return Num(math.Floor(x)), nil
	case OpCeil:
		return Num(math.Ceil(x)), nil
	case OpSqrt:
		return Num(math.Sqrt(x)), nil
	case OpSin:
		return Num(math.Sin(radians(x))), nil
	case OpCos:
		return Num(math.Cos(radians(x))), nil
	case OpTan:
		return Num(math.Tan(radians(x))), nil
	case OpAsin:
		return Num(degrees(math.Asin(x))), nil
	case OpAcos:
		return Num(degrees(math.Acos(x))), nil
	case OpAtan:
		return Num(degrees(math.Atan(x))), nil
	case OpRand:
		return Num(m.rand.Float64() * x), nil
	}

	y, err := b.eval(m).AsNum()
	if err != nil {
		return Null(), err
	}

	switch op {
	case OpAdd:
		return Num(x + y), nil
	case OpSub:
		return Num(x - y), nil
	case OpMul:
		return Num(x * y), nil
	case OpDiv:
		if y == 0 {
			return Null(), ErrDivideByZero
		}

		return Num(x / y), nil
	case OpIdiv:
		xi, yi := int64(x), int64(y)
		if yi == 0 || (xi == math.MinInt64 && yi == -1) {
			return Null(), ErrDivideByZero
		}

		return Num(float64(xi / yi)), nil
	case OpMod:
		return Num(math.Mod(x, y)), nil
	case OpPow:
		return Num(math.Pow(x, y)), nil
	case OpLand:
		return bool01(math.Abs(x) > epsilon && math.Abs(y) > epsilon), nil
	case OpLessThan:
		return bool01(x < y), nil
	case OpLessThanEq:
		return bool01(x <= y), nil
	case OpGreaterThan:
		return bool01(x > y), nil
	case OpGreaterThanEq:
		return bool01(x >= y), nil
	case OpShl:
		return Num(float64(int64(x) << (uint64(int64(y)) & 63))), nil
	case OpShr:
		return Num(float64(int64(x) >> (uint64(int64(y)) & 63))), nil
	case OpOr:
		return Num(float64(int64(x) | int64(y))), nil
	case OpAnd:
		return Num(float64(int64(x) & int64(y))), nil
	case OpXor:
		return Num(float64(int64(x) ^ int64(y))), nil
	case OpMax:
		return Num(math.Max(x, y)), nil
	case OpMin:
		return Num(math.Min(x, y)), nil
	case OpAngle:
		return Num(degrees(math.Atan2(y, x))), nil
	case OpLength:
		return Num(math.Sqrt(x*x + y*y)), nil
	default:
		panic("op: unhandled operator")
	}
}
