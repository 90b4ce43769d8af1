package vm

// errors.go defines the closed set of errors the machine raises. Each carries enough context to
// render its message without further lookup.

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCode is returned by New when the source contains no instructions.
	ErrEmptyCode = errors.New("Program is empty")

	// ErrDivideByZero is raised by the div and idiv operators.
	ErrDivideByZero = errors.New("Division by zero")
)

// CastError is a failed value coercion.
type CastError struct {
	Value string // Display form of the offending value.
	From  string
	To    string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Cannot cast value '%s' of type '%s' to type '%s'", e.Value, e.From, e.To)
}

// DeviceTypeError is an operation applied to a device that does not support it.
type DeviceTypeError struct {
	Action string // e.g. "read from", "print flush into"
	Device string
}

func (e *DeviceTypeError) Error() string {
	return fmt.Sprintf("Cannot %s device '%s'", e.Action, e.Device)
}

// NotFoundError is a variable lookup by name that found nothing. During a run only processor
// devices raise it; Machine.Lookup also returns it for an unknown name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Variable not found: '%s'", e.Name)
}

// ConstantError is a write to a constant variable.
type ConstantError struct {
	Name string
}

func (e *ConstantError) Error() string {
	return fmt.Sprintf("Cannot mutate constant variable '%s'", e.Name)
}

// CodeLengthError is a program that exceeds the configured code length limit. Construction-time
// only.
type CodeLengthError struct {
	Len   int
	Limit int
}

func (e *CodeLengthError) Error() string {
	return fmt.Sprintf("Program has too many instructions (%d > %d)", e.Len, e.Limit)
}

// CharacterError is a code unit that does not decode to a character on its own.
type CharacterError struct {
	CodeUnit uint16
}

func (e *CharacterError) Error() string {
	return fmt.Sprintf("Invalid UTF-16 character: %d", e.CodeUnit)
}

// NegativeIndexError is an index below zero. Context names the indexed thing, e.g. "memory cell"
// or "program counter".
type NegativeIndexError struct {
	Index   int64
	Context string
}

func (e *NegativeIndexError) Error() string {
	return fmt.Sprintf("Negative index (%d) for %s", e.Index, e.Context)
}

// IndexRangeError is an index at or beyond the indexed thing's length.
type IndexRangeError struct {
	Index   int
	Limit   int
	Context string
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("Index out of range (%d >= %d) for %s", e.Index, e.Limit, e.Context)
}

// PCFetchError tags an error raised while decoding @counter, before any instruction was selected.
type PCFetchError struct {
	Err error
}

func (e *PCFetchError) Error() string {
	return "Error during program counter resolution: " + e.Err.Error()
}

func (e *PCFetchError) Unwrap() error { return e.Err }

// FormatError is raised by the format instruction, which is reserved but not implemented.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "Invalid format - " + e.Msg
}

// PropertyError is reserved for future sensor checks.
type PropertyError struct {
	Value    string
	Type     string
	Property string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("Value '%s' of type '%s' has no property '%s'", e.Value, e.Type, e.Property)
}

// OperationError is an unknown operator or jump comparator.
type OperationError struct {
	Operation string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("Invalid operation: '%s'", e.Operation)
}

// OpcodeError is a line whose first token is not a known instruction. Construction-time only.
type OpcodeError struct {
	Opcode string
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("Unsupported instruction: '%s'", e.Opcode)
}

// OperandError is an instruction with the wrong number of operands. Construction-time only.
type OperandError struct {
	Opcode string
	Want   int
	Got    int
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("Instruction '%s' takes %d operands, got %d", e.Opcode, e.Want, e.Got)
}

// CycleError wraps an error raised while executing an instruction with the instruction's
// position. The position is the index of the failing instruction, not the advanced counter.
type CycleError struct {
	Pos int
	Err error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("Error at instruction %d: %s", e.Pos, e.Err)
}

func (e *CycleError) Unwrap() error { return e.Err }
