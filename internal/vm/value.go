package vm

// value.go defines the tagged value type and its coercions.

import (
	"math"
	"strconv"
)

// Kind discriminates the variants of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNum
	KindStr
	KindDevice
	KindProperty
)

// epsilon is the tolerance used when rounding a number to an integer and when testing a number for
// truthiness. It is the spacing of 64-bit floats just above 1.
const epsilon = 0x1p-52

// Property is a symbolic name from a fixed vocabulary, passed to sense to query a device.
type Property string

// The property vocabulary.
const (
	MemoryCapacity Property = "memoryCapacity"
	Size           Property = "size"
)

// Properties lists the whole vocabulary. Each entry gets an @-prefixed builtin variable.
var Properties = []Property{MemoryCapacity, Size}

// Value is a tagged variant over null, number, string, device and property. The zero value is
// null. Values are small and copied freely; string and device variants share their payload.
type Value struct {
	kind Kind
	num  float64
	str  *CodeUnitString
	dev  Device
	prop Property
}

// Null returns the null value.
func Null() Value { return Value{} }

// Num returns a number value.
func Num(n float64) Value { return Value{kind: KindNum, num: n} }

// Str returns a string value wrapping text.
func Str(text string) Value { return Value{kind: KindStr, str: NewCodeUnitString(text)} }

// StrShared returns a string value sharing an existing code-unit string.
func StrShared(s *CodeUnitString) Value { return Value{kind: KindStr, str: s} }

// Dev returns a device value.
func Dev(d Device) Value { return Value{kind: KindDevice, dev: d} }

// Prop returns a property value.
func Prop(p Property) Value { return Value{kind: KindProperty, prop: p} }

// Kind returns the value's variant tag.
func (v Value) Kind() Kind { return v.kind }

// TypeName returns the name used for the value's type in error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindDevice:
		return "Device"
	case KindProperty:
		return "Property"
	default:
		return "null"
	}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) castError(to string) error {
	return &CastError{Value: v.String(), From: v.TypeName(), To: to}
}

// AsNum coerces the value to a number. Only number values succeed.
func (v Value) AsNum() (float64, error) {
	if v.kind != KindNum {
		return 0, v.castError("num")
	}

	return v.num, nil
}

// AsInt coerces the value to an integer. The number must round to an integer within epsilon.
func (v Value) AsInt() (int64, error) {
	n, err := v.AsNum()
	if err != nil {
		return 0, err
	}

	r := math.Round(n)
	if math.Abs(r-n) >= epsilon || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, v.castError("int")
	}

	return int64(r), nil
}

// AsIndex coerces the value to an index into a sequence of length n. Context names the indexed
// thing for error messages.
func (v Value) AsIndex(n int, context string) (int, error) {
	i, err := v.AsInt()
	if err != nil {
		return 0, err
	}

	if i < 0 {
		return 0, &NegativeIndexError{Index: i, Context: context}
	}

	if i >= int64(n) {
		return 0, &IndexRangeError{Index: int(i), Limit: n, Context: context}
	}

	return int(i), nil
}

// AsStr returns the value's shared string payload.
func (v Value) AsStr() (*CodeUnitString, error) {
	if v.kind != KindStr {
		return nil, v.castError("str")
	}

	return v.str, nil
}

// AsDevice returns the value's device payload.
func (v Value) AsDevice() (Device, error) {
	if v.kind != KindDevice {
		return nil, v.castError("Device")
	}

	return v.dev, nil
}

// AsProperty returns the value's property payload.
func (v Value) AsProperty() (Property, error) {
	if v.kind != KindProperty {
		return "", v.castError("Property")
	}

	return v.prop, nil
}

// Sense queries a property reading from the value. Strings answer Size with their length in
// UTF-16 code units; devices delegate; everything else reads null.
func (v Value) Sense(p Property) (Value, error) {
	switch v.kind {
	case KindStr:
		if p == Size {
			return Num(float64(v.str.Len())), nil
		}
	case KindDevice:
		return senseDevice(v.dev, p)
	}

	return Null(), nil
}

// Equal compares two values. Numbers use IEEE equality, strings compare their text, devices
// compare by name and values of different kinds are unequal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNum:
		return v.num == o.num
	case KindStr:
		return v.str.String() == o.str.String()
	case KindDevice:
		return v.dev.Name() == o.dev.Name()
	case KindProperty:
		return v.prop == o.prop
	default: // null
		return true
	}
}

// String renders the value's display form.
func (v Value) String() string {
	switch v.kind {
	case KindNum:
		return formatNum(v.num)
	case KindStr:
		return v.str.String()
	case KindDevice:
		return v.dev.Name()
	case KindProperty:
		return "@" + string(v.prop)
	default:
		return "null"
	}
}

// formatNum renders a float the way the game does: plain decimal notation, shortest exact form,
// no exponent.
func formatNum(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}
