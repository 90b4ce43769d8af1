// Package encoding marshals the interpreter's outer formats: the JSON run envelope that scripts
// and embedders speak, and the YAML device manifests the CLI reads. The envelope shapes mirror
// the interface the game-side tooling already uses, so documents are interchangeable with it.
package encoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/milovm/milo/internal/log"
	"github.com/milovm/milo/internal/vm"
)

// DeviceKind selects a device implementation.
type DeviceKind uint8

const (
	// Message is a message display holding one text buffer.
	Message DeviceKind = iota
	// Memory is a memory cell of fixed capacity.
	Memory
)

// DeviceSpec declares a device to construct. On the wire a message is the string "Message" and a
// memory cell is {"Memory": capacity}.
type DeviceSpec struct {
	Kind     DeviceKind
	Capacity int // Memory only.
}

func (s DeviceSpec) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case Message:
		return json.Marshal("Message")
	case Memory:
		return json.Marshal(map[string]int{"Memory": s.Capacity})
	default:
		return nil, fmt.Errorf("device spec: unknown kind %d", s.Kind)
	}
}

func (s *DeviceSpec) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != "Message" {
			return fmt.Errorf("device spec: unknown device %q", tag)
		}

		s.Kind = Message

		return nil
	}

	var obj map[string]int
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("device spec: %w", err)
	}

	capacity, ok := obj["Memory"]
	if !ok || len(obj) != 1 {
		return errors.New("device spec: expected \"Message\" or {\"Memory\": capacity}")
	}

	s.Kind = Memory
	s.Capacity = capacity

	return nil
}

// DeviceDecl pairs a device name with its spec. On the wire it is a two-element array, keeping
// the declared order significant: the order defines @links and the getlink indices.
type DeviceDecl struct {
	Name string
	Spec DeviceSpec
}

func (d DeviceDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{d.Name, d.Spec})
}

func (d *DeviceDecl) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}

	if len(pair) != 2 {
		return fmt.Errorf("device declaration: expected [name, spec], got %d elements", len(pair))
	}

	if err := json.Unmarshal(pair[0], &d.Name); err != nil {
		return err
	}

	return json.Unmarshal(pair[1], &d.Spec)
}

// Options is a run request.
type Options struct {
	Code             string       `json:"code"`
	CodeLenLimit     *int         `json:"code_len_limit,omitempty"`
	InstructionLimit *int         `json:"instruction_limit,omitempty"`
	EndOnWrap        bool         `json:"end_on_wrap"`
	Devices          []DeviceDecl `json:"devices"`
}

// DeviceState is a device's final contents: exactly one of the fields is set.
type DeviceState struct {
	Message *string
	Memory  []float64
}

func (s DeviceState) MarshalJSON() ([]byte, error) {
	switch {
	case s.Message != nil:
		return json.Marshal(map[string]string{"Message": *s.Message})
	case s.Memory != nil:
		return json.Marshal(map[string][]float64{"Memory": s.Memory})
	default:
		return nil, errors.New("device state: empty")
	}
}

func (s *DeviceState) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	if raw, ok := obj["Message"]; ok {
		s.Message = new(string)
		return json.Unmarshal(raw, s.Message)
	}

	if raw, ok := obj["Memory"]; ok {
		return json.Unmarshal(raw, &s.Memory)
	}

	return errors.New("device state: expected Message or Memory")
}

// ErrorPos locates a failure: at an instruction index, during PC resolution, or nowhere in
// particular (construction failures).
type ErrorPos struct {
	Instruction int
	kind        errorPosKind
}

type errorPosKind uint8

const (
	posNone errorPosKind = iota
	posInstruction
	posPCFetch
)

// AtInstruction returns a position at an instruction index.
func AtInstruction(i int) ErrorPos { return ErrorPos{Instruction: i, kind: posInstruction} }

// AtPCFetch returns the PC-resolution position.
func AtPCFetch() ErrorPos { return ErrorPos{kind: posPCFetch} }

func (p ErrorPos) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case posInstruction:
		return json.Marshal(map[string]int{"Instruction": p.Instruction})
	case posPCFetch:
		return json.Marshal("PcFetch")
	default:
		return json.Marshal("None")
	}
}

func (p *ErrorPos) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch tag {
		case "PcFetch":
			p.kind = posPCFetch
		case "None":
			p.kind = posNone
		default:
			return fmt.Errorf("error pos: unknown tag %q", tag)
		}

		return nil
	}

	var obj map[string]int
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	i, ok := obj["Instruction"]
	if !ok {
		return errors.New("error pos: expected Instruction")
	}

	p.kind = posInstruction
	p.Instruction = i

	return nil
}

// Success is the happy half of an Output.
type Success struct {
	FinishReason string                 `json:"finish_reason"`
	Devices      map[string]DeviceState `json:"devices"`
	PrintBuffer  string                 `json:"print_buffer"`
}

// Failure is the sad half.
type Failure struct {
	Pos ErrorPos `json:"pos"`
	Msg string   `json:"msg"`
}

// Output is a run result: exactly one of Success or Failure is set.
type Output struct {
	Success *Success `json:"Success,omitempty"`
	Failure *Failure `json:"Failure,omitempty"`
}

// ReadOptions decodes a run request from r.
func ReadOptions(r io.Reader) (Options, error) {
	var opts Options

	dec := json.NewDecoder(r)
	if err := dec.Decode(&opts); err != nil {
		return opts, fmt.Errorf("request: %w", err)
	}

	return opts, nil
}

// WriteOutput encodes a run result to w.
func WriteOutput(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("result: %w", err)
	}

	return nil
}

// Run executes a request end to end: construct the declared devices, build the machine, drive it
// and harvest the device snapshots. Errors become a structured Failure, never a Go error; the
// envelope has no other channel.
func Run(ctx context.Context, opts Options, logger *log.Logger) Output {
	devices := make([]vm.Device, 0, len(opts.Devices))

	for _, decl := range opts.Devices {
		switch decl.Spec.Kind {
		case Message:
			devices = append(devices, vm.NewMessageDisplay(decl.Name))
		case Memory:
			devices = append(devices, vm.NewMemoryCell(decl.Name, decl.Spec.Capacity))
		default:
			return failure(fmt.Errorf("device spec: unknown kind %d", decl.Spec.Kind))
		}
	}

	machineOpts := []vm.OptionFn{
		vm.WithDevices(devices...),
		vm.WithLogger(logger),
	}

	if opts.CodeLenLimit != nil {
		machineOpts = append(machineOpts, vm.WithCodeLimit(*opts.CodeLenLimit))
	}

	machine, err := vm.New(opts.Code, machineOpts...)
	if err != nil {
		return failure(err)
	}

	limit := 0
	if opts.InstructionLimit != nil {
		limit = *opts.InstructionLimit
	}

	reason, err := machine.Run(ctx, limit, opts.EndOnWrap)
	if err != nil {
		return failure(err)
	}

	states := make(map[string]DeviceState, len(devices))

	for _, dev := range devices {
		switch dev := dev.(type) {
		case *vm.MessageDisplay:
			text := dev.Text()
			states[dev.Name()] = DeviceState{Message: &text}
		case *vm.MemoryCell:
			states[dev.Name()] = DeviceState{Memory: dev.Data()}
		}
	}

	return Output{Success: &Success{
		FinishReason: reason.String(),
		Devices:      states,
		PrintBuffer:  machine.TakeOutput(),
	}}
}

// failure renders an error into the envelope's failure shape. Errors annotated with an
// instruction position keep it; a PC fetch error is tagged as such; anything else, including
// every construction failure, has no position.
func failure(err error) Output {
	var (
		cycleErr *vm.CycleError
		pcErr    *vm.PCFetchError
	)

	switch {
	case errors.As(err, &cycleErr):
		return Output{Failure: &Failure{Pos: AtInstruction(cycleErr.Pos), Msg: cycleErr.Error()}}
	case errors.As(err, &pcErr):
		return Output{Failure: &Failure{Pos: AtPCFetch(), Msg: pcErr.Error()}}
	default:
		return Output{Failure: &Failure{Msg: "Error: " + err.Error()}}
	}
}
