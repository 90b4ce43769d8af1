package vm

// log.go wires the machine into the logging package.

import (
	"github.com/milovm/milo/internal/log"
)

// LogValue snapshots the machine's state for structured logs.
func (m *Machine) LogValue() log.Value {
	return log.GroupValue(
		log.String("pc", m.pc.Value(m.vars).String()),
		log.Int("code", len(m.code)),
		log.Int("vars", m.vars.Len()),
		log.Int("devices", len(m.devices)),
		log.Int("buffered", m.printer.Len()),
	)
}
