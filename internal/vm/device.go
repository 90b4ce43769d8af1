package vm

// device.go defines the peripheral devices linked to the processor. Every device has a name; the
// four I/O capabilities are optional interfaces, and an operation on a device that does not
// implement it fails with a DeviceTypeError, the way an unsupported block behaves in game.

// Device is a peripheral addressable from a program. Devices are constructed before the machine,
// live as long as it, and are snapshotted afterwards.
type Device interface {
	Name() string
}

// DeviceFlusher accepts print-buffer dumps.
type DeviceFlusher interface {
	Device
	Flush(text string) error
}

// DeviceReader serves indexed reads.
type DeviceReader interface {
	Device
	Read(index Value) (Value, error)
}

// DeviceWriter serves indexed writes.
type DeviceWriter interface {
	Device
	Write(index, value Value) error
}

// DeviceSenser serves property readings.
type DeviceSenser interface {
	Device
	Sense(p Property) (Value, error)
}

func flushDevice(d Device, text string) error {
	if f, ok := d.(DeviceFlusher); ok {
		return f.Flush(text)
	}

	return &DeviceTypeError{Action: "print flush into", Device: d.Name()}
}

func readDevice(d Device, index Value) (Value, error) {
	if r, ok := d.(DeviceReader); ok {
		return r.Read(index)
	}

	return Null(), &DeviceTypeError{Action: "read from", Device: d.Name()}
}

func writeDevice(d Device, index, value Value) error {
	if w, ok := d.(DeviceWriter); ok {
		return w.Write(index, value)
	}

	return &DeviceTypeError{Action: "write into", Device: d.Name()}
}

func senseDevice(d Device, p Property) (Value, error) {
	if s, ok := d.(DeviceSenser); ok {
		return s.Sense(p)
	}

	return Null(), &DeviceTypeError{Action: "sense from", Device: d.Name()}
}

// MessageDisplay is a message block: a device holding one text buffer, replaced on each flush.
type MessageDisplay struct {
	name string
	text string
}

// NewMessageDisplay returns an empty display named name.
func NewMessageDisplay(name string) *MessageDisplay {
	return &MessageDisplay{name: name}
}

func (d *MessageDisplay) Name() string { return d.name }

// Flush replaces the display's text.
func (d *MessageDisplay) Flush(text string) error {
	d.text = text
	return nil
}

// Text returns the currently displayed text.
func (d *MessageDisplay) Text() string { return d.text }

// MemoryCell is a memory block: a fixed-length vector of numbers.
type MemoryCell struct {
	name string
	data []float64
}

// NewMemoryCell returns a zeroed cell with the given capacity.
func NewMemoryCell(name string, capacity int) *MemoryCell {
	return &MemoryCell{name: name, data: make([]float64, capacity)}
}

func (c *MemoryCell) Name() string { return c.name }

// Read returns the number at index.
func (c *MemoryCell) Read(index Value) (Value, error) {
	i, err := index.AsIndex(len(c.data), "memory cell")
	if err != nil {
		return Null(), err
	}

	return Num(c.data[i]), nil
}

// Write stores value, coerced to a number, at index.
func (c *MemoryCell) Write(index, value Value) error {
	i, err := index.AsIndex(len(c.data), "memory cell")
	if err != nil {
		return err
	}

	n, err := value.AsNum()
	if err != nil {
		return err
	}

	c.data[i] = n

	return nil
}

// Sense answers the capacity properties with the cell's length.
func (c *MemoryCell) Sense(p Property) (Value, error) {
	switch p {
	case MemoryCapacity, Size:
		return Num(float64(len(c.data))), nil
	default:
		return Null(), nil
	}
}

// Data returns a copy of the cell's contents.
func (c *MemoryCell) Data() []float64 {
	data := make([]float64, len(c.data))
	copy(data, c.data)

	return data
}

// Processor is the device behind @this: it reads and writes the owning machine's variable store
// from outside, addressed by variable name instead of index.
type Processor struct {
	name string
	vars *Store
}

// NewProcessor returns a processor device backed by vars. The machine installs one under @this
// right after the store is built.
func NewProcessor(name string, vars *Store) *Processor {
	return &Processor{name: name, vars: vars}
}

func (p *Processor) Name() string { return p.name }

// Read returns the value of the variable named by index.
func (p *Processor) Read(index Value) (Value, error) {
	s, err := index.AsStr()
	if err != nil {
		return Null(), err
	}

	h, ok := p.vars.Lookup(s.String())
	if !ok {
		return Null(), &NotFoundError{Name: s.String()}
	}

	return h.Value(p.vars), nil
}

// Write sets the variable named by index, honouring constness.
func (p *Processor) Write(index, value Value) error {
	s, err := index.AsStr()
	if err != nil {
		return err
	}

	h, ok := p.vars.Lookup(s.String())
	if !ok {
		return &NotFoundError{Name: s.String()}
	}

	return h.Set(p.vars, value)
}
