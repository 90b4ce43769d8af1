package vm

// vm.go defines the machine and assembles it from the store, the program and the linked devices.

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/milovm/milo/internal/log"
)

// DefaultCodeLimit is the default cap on the number of parsed instructions.
const DefaultCodeLimit = 1000

// FinishReason reports why a run stopped.
type FinishReason uint8

//go:generate stringer -type=FinishReason

const (
	// PcWrap: the program counter ran past the last instruction and wrapped to zero.
	PcWrap FinishReason = iota
	// Halt: a stop instruction executed.
	Halt
	// InsLimit: the cycle budget was exhausted.
	InsLimit
)

// Machine is one logic processor: a variable store, a parsed program, a print buffer and the
// ordered list of linked devices. The program counter lives in the store as @counter and is
// re-read every cycle, which is what lets jump, end and plain set steer execution.
type Machine struct {
	vars    *Store
	pc      Handle
	code    []instruction
	printer PrintBuffer
	devices []Device

	codeLimit int
	halted    bool
	rand      *rand.Rand
	log       *log.Logger
}

// OptionFn configures a machine before its program is parsed.
type OptionFn func(*Machine)

// WithDevices links devices, in order. The order defines @links and the indices getlink consumes.
func WithDevices(devices ...Device) OptionFn {
	return func(m *Machine) { m.devices = devices }
}

// WithCodeLimit overrides DefaultCodeLimit.
func WithCodeLimit(limit int) OptionFn {
	return func(m *Machine) { m.codeLimit = limit }
}

// WithLogger configures the machine to log to logger.
func WithLogger(logger *log.Logger) OptionFn {
	return func(m *Machine) { m.log = logger }
}

// WithRandom seeds the rand operator with a caller-owned source, for reproducible runs.
func WithRandom(r *rand.Rand) OptionFn {
	return func(m *Machine) { m.rand = r }
}

// New builds a machine for source. Construction seeds the builtin variables, binds one constant
// per linked device, parses every line (interning variable names as it goes), checks the code
// length and finally installs the @this processor. Any failure aborts construction.
func New(source string, opts ...OptionFn) (*Machine, error) {
	m := &Machine{
		vars:      NewStore(),
		codeLimit: DefaultCodeLimit,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = log.DefaultLogger()
	}

	if m.rand == nil {
		m.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	m.seedBuiltins()

	for _, dev := range m.devices {
		m.vars.Insert(dev.Name(), NewConstant(dev.Name(), Dev(dev)))
	}

	for _, line := range strings.Split(source, "\n") {
		inst, err := parseLine(line, m.vars)
		if err != nil {
			return nil, err
		}

		if inst != nil {
			m.code = append(m.code, inst)
		}
	}

	if len(m.code) == 0 {
		return nil, ErrEmptyCode
	}

	if len(m.code) > m.codeLimit {
		return nil, &CodeLengthError{Len: len(m.code), Limit: m.codeLimit}
	}

	pc, _ := m.vars.Lookup("@counter")
	m.pc = pc

	// @this is constant, so installing the back-referencing processor device goes through the
	// privileged setter.
	this, _ := m.vars.Lookup("@this")
	this.forceSet(m.vars, Dev(NewProcessor("@this", m.vars)))

	m.log.Debug("machine built",
		log.Int("instructions", len(m.code)),
		log.Int("variables", m.vars.Len()),
		log.Int("devices", len(m.devices)))

	return m, nil
}

// seedBuiltins installs the fixed builtin variables. Everything is constant except @counter and
// @unit. The time-like builtins stay at their initial values: this machine has no clock.
func (m *Machine) seedBuiltins() {
	builtins := []struct {
		name     string
		value    Value
		writable bool
	}{
		{"@counter", Num(0), true},
		{"@this", Null(), false}, // Placeholder until the store exists.
		{"@thisx", Num(0), false},
		{"@thisy", Num(0), false},
		{"@ipt", Num(1000), false},
		{"@timescale", Num(1), false},
		{"@links", Num(float64(len(m.devices))), false},
		{"@unit", Null(), true},
		{"@time", Num(0), false},
		{"@tick", Num(0), false},
		{"@second", Num(0), false},
		{"@minute", Num(0), false},
		{"@waveNumber", Num(0), false},
		{"@waveTime", Num(0), false},
		{"@mapw", Num(0), false},
		{"@maph", Num(0), false},
		{"null", Null(), false},
		{"true", Num(1), false},
		{"false", Num(0), false},
		{"@pi", Num(math.Pi), false},
		{"@e", Num(math.E), false},
		{"@degToRad", Num(math.Pi / 180), false},
		{"@radToDeg", Num(180 / math.Pi), false},
		{"blockCount", Num(0), false},
		{"unitCount", Num(0), false},
		{"itemCount", Num(0), false},
		{"liquidCount", Num(0), false},
	}

	for _, b := range builtins {
		if b.writable {
			m.vars.Insert(b.name, NewVariable(b.name, b.value))
		} else {
			m.vars.Insert(b.name, NewConstant(b.name, b.value))
		}
	}

	for _, p := range Properties {
		name := "@" + string(p)
		m.vars.Insert(name, NewConstant(name, Prop(p)))
	}
}

// StepResult reports what one cycle did.
type StepResult struct {
	Wrapped bool // The counter ran past the end and wrapped to zero.
	Halted  bool // A stop instruction executed.
}

// Step runs one cycle: fetch @counter, clamp and wrap it, advance it, execute the instruction at
// the pre-advance index. An execution error is annotated with that index; a counter that fails
// to decode is tagged as a PC fetch error instead.
func (m *Machine) Step() (StepResult, error) {
	var res StepResult

	n, err := m.pc.Value(m.vars).AsInt()
	if err != nil {
		return res, &PCFetchError{Err: err}
	}

	if n < 0 {
		return res, &NegativeIndexError{Index: n, Context: "program counter"}
	}

	pc := int(n)
	if pc >= len(m.code) {
		pc = 0
		res.Wrapped = true
	}

	// The counter advances before execution; a jump or end lands on the next cycle.
	if err := m.pc.Set(m.vars, Num(float64(pc+1))); err != nil {
		return res, err
	}

	m.halted = false

	if err := m.code[pc].execute(m); err != nil {
		return res, &CycleError{Pos: pc, Err: err}
	}

	res.Halted = m.halted

	return res, nil
}

// Run drives the machine for up to limit cycles; limit <= 0 means unbounded. With endOnWrap set,
// a wrap of the program counter ends the run. A halt always wins over a wrap in the same cycle,
// and both win over the cycle budget.
func (m *Machine) Run(ctx context.Context, limit int, endOnWrap bool) (FinishReason, error) {
	for i := 0; limit <= 0 || i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return InsLimit, err
		}

		res, err := m.Step()
		if err != nil {
			m.log.Error("run failed", log.Int("cycle", i), log.Any("err", err))
			return InsLimit, err
		}

		switch {
		case res.Halted:
			m.log.Debug("run halted", log.Int("cycles", i+1))
			return Halt, nil
		case res.Wrapped && endOnWrap:
			m.log.Debug("run wrapped", log.Int("cycles", i+1))
			return PcWrap, nil
		}
	}

	m.log.Debug("run exhausted cycle budget", log.Int("cycles", limit))

	return InsLimit, nil
}

// Lookup reads a variable's current value by name.
func (m *Machine) Lookup(name string) (Value, error) {
	h, ok := m.vars.Lookup(name)
	if !ok {
		return Null(), &NotFoundError{Name: name}
	}

	return h.Value(m.vars), nil
}

// TakeOutput drains the print buffer, returning whatever print left behind after the last
// printflush.
func (m *Machine) TakeOutput() string {
	return m.printer.Take()
}

// Devices returns the linked devices in link order.
func (m *Machine) Devices() []Device {
	return m.devices
}
