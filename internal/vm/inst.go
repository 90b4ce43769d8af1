package vm

// inst.go defines the instruction set: the line lexer, the parse table and one struct per opcode.
// Parsing happens during machine construction because operand interning mutates the variable
// store; execution afterwards touches variables only through handles.

import (
	"strconv"
	"strings"
)

// splitFields splits a source line into tokens. Tokens are separated by ASCII spaces; a double
// quote toggles quoted mode, in which spaces do not split. Quotes stay part of the token. Tabs,
// commas and anything else are ordinary token characters.
func splitFields(line string) []string {
	var (
		fields []string
		start  = -1 // Start of the current token, -1 between tokens.
		quoted bool
	)

	for i, ch := range line {
		switch {
		case ch == '"':
			quoted = !quoted

			if start < 0 {
				start = i
			}
		case ch == ' ' && !quoted:
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}

	if start >= 0 {
		fields = append(fields, line[start:])
	}

	return fields
}

// arg is an expression operand: either an immediate value or a variable reference resolved to a
// handle at parse time.
type arg struct {
	value    Value
	handle   Handle
	isHandle bool
}

// parseArg classifies a token: a double-quoted token is a string literal with the quotes
// stripped, a token that parses as a float is a numeric literal, and anything else is interned
// as a variable reference.
func parseArg(tok string, vars *Store) arg {
	if len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) {
		return arg{value: Str(tok[1 : len(tok)-1])}
	}

	if n, err := strconv.ParseFloat(tok, 64); err == nil {
		return arg{value: Num(n)}
	}

	return arg{handle: vars.Handle(tok), isHandle: true}
}

// eval produces the operand's current value. Immediates share their payload across evaluations;
// variables are read out of the store by handle.
func (a arg) eval(m *Machine) Value {
	if a.isHandle {
		return a.handle.Value(m.vars)
	}

	return a.value
}

// instruction is one parsed line of the program. Parse fills the instruction from its operand
// tokens; execute runs it against the machine.
type instruction interface {
	parse(op string, operands []string, vars *Store) error
	execute(m *Machine) error
}

// instructionTable maps mnemonics to prototype constructors.
var instructionTable = map[string]func() instruction{
	"read":      func() instruction { return &readInstr{} },
	"write":     func() instruction { return &writeInstr{} },
	"print":     func() instruction { return &printInstr{} },
	"printchar": func() instruction { return &printCharInstr{} },
	"format":    func() instruction { return &formatInstr{} },

	"printflush": func() instruction { return &printFlushInstr{} },
	"getlink":    func() instruction { return &getLinkInstr{} },
	"sensor":     func() instruction { return &sensorInstr{} },

	"set": func() instruction { return &setInstr{} },
	"op":  func() instruction { return &opInstr{} },

	"wait": func() instruction { return &waitInstr{} },
	"stop": func() instruction { return &stopInstr{} },
	"end":  func() instruction { return &endInstr{} },
	"jump": func() instruction { return &jumpInstr{} },
}

// parseLine turns one source line into an instruction, interning variable references as a side
// effect. A line with no tokens yields nil. An unknown mnemonic is fatal to construction.
func parseLine(line string, vars *Store) (instruction, error) {
	fields := splitFields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	proto, ok := instructionTable[fields[0]]
	if !ok {
		return nil, &OpcodeError{Opcode: fields[0]}
	}

	inst := proto()
	if err := inst.parse(fields[0], fields[1:], vars); err != nil {
		return nil, err
	}

	return inst, nil
}

// operands checks the operand count for an instruction.
func operands(op string, args []string, want int) error {
	if len(args) != want {
		return &OperandError{Opcode: op, Want: want, Got: len(args)}
	}

	return nil
}

// readInstr: read dst src idx. A string source is indexed by UTF-16 code unit; anything else
// must be a readable device.
type readInstr struct {
	dst      Handle
	src, idx arg
}

func (i *readInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 3); err != nil {
		return err
	}

	i.dst = vars.Handle(args[0])
	i.src = parseArg(args[1], vars)
	i.idx = parseArg(args[2], vars)

	return nil
}

func (i *readInstr) execute(m *Machine) error {
	src := i.src.eval(m)
	idx := i.idx.eval(m)

	if s, err := src.AsStr(); err == nil {
		units := s.CodeUnits()

		j, err := idx.AsIndex(len(units), "string")
		if err != nil {
			return err
		}

		return i.dst.Set(m.vars, Num(float64(units[j])))
	}

	dev, err := src.AsDevice()
	if err != nil {
		return err
	}

	val, err := readDevice(dev, idx)
	if err != nil {
		return err
	}

	return i.dst.Set(m.vars, val)
}

// writeInstr: write val tgt idx.
type writeInstr struct {
	val, tgt, idx arg
}

func (i *writeInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 3); err != nil {
		return err
	}

	i.val = parseArg(args[0], vars)
	i.tgt = parseArg(args[1], vars)
	i.idx = parseArg(args[2], vars)

	return nil
}

func (i *writeInstr) execute(m *Machine) error {
	dev, err := i.tgt.eval(m).AsDevice()
	if err != nil {
		return err
	}

	return writeDevice(dev, i.idx.eval(m), i.val.eval(m))
}

// printInstr: print val.
type printInstr struct {
	val arg
}

func (i *printInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 1); err != nil {
		return err
	}

	i.val = parseArg(args[0], vars)

	return nil
}

func (i *printInstr) execute(m *Machine) error {
	m.printer.WriteString(i.val.eval(m).String())
	return nil
}

// printCharInstr: printchar val.
type printCharInstr struct {
	val arg
}

func (i *printCharInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 1); err != nil {
		return err
	}

	i.val = parseArg(args[0], vars)

	return nil
}

func (i *printCharInstr) execute(m *Machine) error {
	n, err := i.val.eval(m).AsInt()
	if err != nil {
		return err
	}

	return m.printer.WriteCodeUnit(uint16(n))
}

// formatInstr: format val. Reserved.
type formatInstr struct {
	val arg
}

func (i *formatInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 1); err != nil {
		return err
	}

	i.val = parseArg(args[0], vars)

	return nil
}

func (i *formatInstr) execute(m *Machine) error {
	return m.printer.Format(i.val.eval(m).String())
}

// printFlushInstr: printflush dev. Takes the buffer and hands it to the device.
type printFlushInstr struct {
	dev arg
}

func (i *printFlushInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 1); err != nil {
		return err
	}

	i.dev = parseArg(args[0], vars)

	return nil
}

func (i *printFlushInstr) execute(m *Machine) error {
	dev, err := i.dev.eval(m).AsDevice()
	if err != nil {
		return err
	}

	return flushDevice(dev, m.printer.Take())
}

// getLinkInstr: getlink dst idx. Binds dst to the idx-th linked device.
type getLinkInstr struct {
	dst Handle
	idx arg
}

func (i *getLinkInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 2); err != nil {
		return err
	}

	i.dst = vars.Handle(args[0])
	i.idx = parseArg(args[1], vars)

	return nil
}

func (i *getLinkInstr) execute(m *Machine) error {
	j, err := i.idx.eval(m).AsIndex(len(m.devices), "get link")
	if err != nil {
		return err
	}

	return i.dst.Set(m.vars, Dev(m.devices[j]))
}

// sensorInstr: sensor dst src prop.
type sensorInstr struct {
	dst       Handle
	src, prop arg
}

func (i *sensorInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 3); err != nil {
		return err
	}

	i.dst = vars.Handle(args[0])
	i.src = parseArg(args[1], vars)
	i.prop = parseArg(args[2], vars)

	return nil
}

func (i *sensorInstr) execute(m *Machine) error {
	src := i.src.eval(m)

	p, err := i.prop.eval(m).AsProperty()
	if err != nil {
		return err
	}

	val, err := src.Sense(p)
	if err != nil {
		return err
	}

	return i.dst.Set(m.vars, val)
}

// setInstr: set dst val.
type setInstr struct {
	dst Handle
	val arg
}

func (i *setInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 2); err != nil {
		return err
	}

	i.dst = vars.Handle(args[0])
	i.val = parseArg(args[1], vars)

	return nil
}

func (i *setInstr) execute(m *Machine) error {
	return i.dst.Set(m.vars, i.val.eval(m))
}

// opInstr: op OP dst a b.
type opInstr struct {
	op   Operator
	dst  Handle
	a, b arg
}

func (i *opInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 4); err != nil {
		return err
	}

	oper, ok := operatorTable[args[0]]
	if !ok {
		return &OperationError{Operation: args[0]}
	}

	i.op = oper
	i.dst = vars.Handle(args[1])
	i.a = parseArg(args[2], vars)
	i.b = parseArg(args[3], vars)

	return nil
}

func (i *opInstr) execute(m *Machine) error {
	val, err := m.evalOperator(i.op, i.a, i.b)
	if err != nil {
		return err
	}

	return i.dst.Set(m.vars, val)
}

// waitInstr: wait t. There is no clock in this machine; the argument is validated as a number
// and nothing else happens.
type waitInstr struct {
	t arg
}

func (i *waitInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 1); err != nil {
		return err
	}

	i.t = parseArg(args[0], vars)

	return nil
}

func (i *waitInstr) execute(m *Machine) error {
	_, err := i.t.eval(m).AsNum()
	return err
}

// stopInstr: stop. Halts the run.
type stopInstr struct{}

func (i *stopInstr) parse(op string, args []string, vars *Store) error {
	return operands(op, args, 0)
}

func (i *stopInstr) execute(m *Machine) error {
	m.halted = true
	return nil
}

// endInstr: end. Resets @counter so the program re-enters at the top on the next cycle.
type endInstr struct{}

func (i *endInstr) parse(op string, args []string, vars *Store) error {
	return operands(op, args, 0)
}

func (i *endInstr) execute(m *Machine) error {
	return m.pc.Set(m.vars, Num(0))
}

// jumpInstr: jump dst cmp a b. The comparator is kept symbolic and validated when the jump
// executes.
type jumpInstr struct {
	dst  arg
	cmp  string
	a, b arg
}

func (i *jumpInstr) parse(op string, args []string, vars *Store) error {
	if err := operands(op, args, 4); err != nil {
		return err
	}

	i.dst = parseArg(args[0], vars)
	i.cmp = args[1]
	i.a = parseArg(args[2], vars)
	i.b = parseArg(args[3], vars)

	return nil
}

func (i *jumpInstr) execute(m *Machine) error {
	taken, err := i.condition(m)
	if err != nil {
		return err
	}

	if !taken {
		return nil
	}

	n, err := i.dst.eval(m).AsNum()
	if err != nil {
		return err
	}

	return m.pc.Set(m.vars, Num(n))
}

func (i *jumpInstr) condition(m *Machine) (bool, error) {
	if i.cmp == "always" {
		return true, nil
	}

	a := i.a.eval(m)
	b := i.b.eval(m)

	switch i.cmp {
	case "equal", "strictEqual":
		return a.Equal(b), nil
	case "notEqual":
		return !a.Equal(b), nil
	}

	an, err := a.AsNum()
	if err != nil {
		return false, err
	}

	bn, err := b.AsNum()
	if err != nil {
		return false, err
	}

	switch i.cmp {
	case "lessThan":
		return an < bn, nil
	case "lessThanEq":
		return an <= bn, nil
	case "greaterThan":
		return an > bn, nil
	case "greaterThanEq":
		return an >= bn, nil
	default:
		return false, &OperationError{Operation: i.cmp}
	}
}
