// Package machine assembles the full system: CPU, address bus, interrupt
// controller, timer, serial port, joypad, LCD and cartridge, stepped in
// lockstep from a single goroutine.
package machine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"dotmatrix/internal/cartridge"
	"dotmatrix/internal/cpu"
	"dotmatrix/internal/interrupt"
	"dotmatrix/internal/joypad"
	"dotmatrix/internal/memory"
	"dotmatrix/internal/serial"
	"dotmatrix/internal/timer"
	"dotmatrix/internal/video"
)

// CyclesPerSecond is the master clock rate in T-cycles.
const CyclesPerSecond = 4194304

// CyclesPerFrame is the T-cycle cost of one complete LCD frame.
const CyclesPerFrame = 70224

// Machine is one complete system instance. Not safe for concurrent use.
type Machine struct {
	CPU    *cpu.CPU
	Bus    *memory.Bus
	IC     *interrupt.Controller
	Timer  *timer.Timer
	Serial *serial.Port
	Joypad *joypad.Joypad
	Video  *video.LCD
	Cart   cartridge.Cartridge

	serialOut []byte
}

// New builds a machine around the given cartridge image.
func New(rom []byte) (*Machine, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}

	h := cart.Header()
	logrus.WithFields(logrus.Fields{
		"title":      h.Title(),
		"controller": h.ControllerType,
		"rom_banks":  h.ROMBanks(),
		"ram_banks":  h.RAMBanks(),
		"battery":    cart.HasBattery(),
	}).Info("cartridge loaded")

	ic := interrupt.New()
	bus := memory.NewBus()

	m := &Machine{
		Bus:  bus,
		IC:   ic,
		Cart: cart,

		serialOut: make([]byte, 0, 1024),
	}

	m.Timer = timer.New(func() { ic.Request(interrupt.Timer) })
	m.Serial = serial.New(func() { ic.Request(interrupt.Serial) })
	m.Serial.SetByteCallback(func(b uint8) {
		m.serialOut = append(m.serialOut, b)
	})
	m.Joypad = joypad.New(func() { ic.Request(interrupt.Joypad) })
	m.Video = video.New(
		func() { ic.Request(interrupt.VBlank) },
		func() { ic.Request(interrupt.LCD) },
	)

	bus.SetCartridge(cart)
	bus.SetVideo(m.Video)
	bus.SetJoypad(m.Joypad)
	bus.SetTimer(m.Timer)
	bus.SetSerial(m.Serial)
	bus.SetInterrupts(ic)

	m.CPU = cpu.New(bus, ic)
	m.Joypad.SetWakeFunc(m.CPU.Wake)

	return m, nil
}

// Step runs one CPU step and feeds the elapsed cycles to every peripheral,
// always in the same order. It returns the T-cycles consumed.
func (m *Machine) Step() uint8 {
	cycles := m.CPU.Step()

	m.Timer.Step(cycles)
	m.Video.Step(cycles)
	m.Serial.Step(cycles)
	m.Cart.Step(cycles)
	m.Bus.StepDMA(cycles)

	return cycles
}

// RunCycles steps the machine until at least n more T-cycles have elapsed.
func (m *Machine) RunCycles(n uint64) {
	target := m.CPU.Cycles + n
	for m.CPU.Cycles < target {
		m.Step()
	}
}

// RunFrame steps the machine until the LCD completes a frame, bounded by two
// frames' worth of cycles in case the panel is disabled.
func (m *Machine) RunFrame() {
	limit := m.CPU.Cycles + 2*CyclesPerFrame
	for m.CPU.Cycles < limit {
		m.Step()
		if m.Video.TakeFrame() {
			return
		}
	}
}

// SerialOutput returns every byte sent out the serial port so far.
func (m *Machine) SerialOutput() []byte {
	return m.serialOut
}

// BatteryRAM returns the cartridge RAM when the cartridge is battery-backed,
// or nil when there is nothing to persist.
func (m *Machine) BatteryRAM() []byte {
	if !m.Cart.HasBattery() {
		return nil
	}
	return m.Cart.RAM()
}

// LoadBatteryRAM restores persisted cartridge RAM.
func (m *Machine) LoadBatteryRAM(data []byte) error {
	if err := m.Cart.LoadRAM(data); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	return nil
}
