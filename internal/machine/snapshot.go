package machine

import (
	"encoding/gob"
	"fmt"
	"io"

	"dotmatrix/internal/cartridge"
	"dotmatrix/internal/cpu"
	"dotmatrix/internal/interrupt"
	"dotmatrix/internal/joypad"
	"dotmatrix/internal/memory"
	"dotmatrix/internal/serial"
	"dotmatrix/internal/timer"
	"dotmatrix/internal/video"
)

// snapshotVersion guards the wire format; bump on any State layout change.
const snapshotVersion = 1

// State aggregates the serializable state of every component. The cartridge
// image itself is not included; a snapshot is only valid against the same
// ROM it was taken from.
type State struct {
	Version int

	CPU       cpu.SnapshotState
	Bus       memory.State
	Interrupt interrupt.State
	Timer     timer.State
	Serial    serial.State
	Joypad    joypad.State
	Video     video.State
	Cartridge cartridge.State

	SerialOut []byte
}

// Snapshot captures the complete machine state.
func (m *Machine) Snapshot() State {
	return State{
		Version:   snapshotVersion,
		CPU:       m.CPU.Snapshot(),
		Bus:       m.Bus.Snapshot(),
		Interrupt: m.IC.Snapshot(),
		Timer:     m.Timer.Snapshot(),
		Serial:    m.Serial.Snapshot(),
		Joypad:    m.Joypad.Snapshot(),
		Video:     m.Video.Snapshot(),
		Cartridge: m.Cart.Snapshot(),
		SerialOut: append([]byte(nil), m.serialOut...),
	}
}

// Restore replaces the complete machine state. On error the machine is
// unchanged.
func (m *Machine) Restore(s State) error {
	if s.Version != snapshotVersion {
		return fmt.Errorf("machine: snapshot version %d, want %d", s.Version, snapshotVersion)
	}
	if err := m.Cart.Restore(s.Cartridge); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	m.CPU.Restore(s.CPU)
	m.Bus.Restore(s.Bus)
	m.IC.Restore(s.Interrupt)
	m.Timer.Restore(s.Timer)
	m.Serial.Restore(s.Serial)
	m.Joypad.Restore(s.Joypad)
	m.Video.Restore(s.Video)
	m.serialOut = append(m.serialOut[:0], s.SerialOut...)
	return nil
}

// SaveState serializes a snapshot to w.
func (m *Machine) SaveState(w io.Writer) error {
	s := m.Snapshot()
	if err := gob.NewEncoder(w).Encode(&s); err != nil {
		return fmt.Errorf("machine: encode state: %w", err)
	}
	return nil
}

// LoadState deserializes a snapshot from r and restores it.
func (m *Machine) LoadState(r io.Reader) error {
	var s State
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("machine: decode state: %w", err)
	}
	return m.Restore(s)
}
