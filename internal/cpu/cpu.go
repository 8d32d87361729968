// Package cpu implements the Sharp SM83 core: fetch, table-driven decode,
// execute, interrupt servicing and the low-power states.
//
// Cycle accounting is access-driven. Every bus access contributes the cycle
// cost the bus returns, and purely internal machine cycles are charged
// explicitly, so the total for each instruction equals its documented cost
// while still letting the bus own peripheral-dependent pricing.
package cpu

import (
	"dotmatrix/internal/interrupt"
)

// Bus is the CPU's view of the address bus: values plus cycle costs.
type Bus interface {
	Read(addr uint16) (uint8, uint8)
	Write(addr uint16, value uint8) uint8
}

// ExecState is the CPU execution state.
type ExecState uint8

// Execution states. There is no terminal state; Stopped ends on the
// external wake signal.
const (
	StateRunning ExecState = iota
	StateHalted
	StateStopped
)

func (s ExecState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateStopped:
		return "stopped"
	default:
		return "invalid"
	}
}

// Cost of one idle machine cycle while halted or stopped.
const idleCycles = 4

// CPU is one SM83 core instance. All state is owned exclusively; a Machine
// holds exactly one and drives it from a single goroutine.
type CPU struct {
	Regs *Registers

	bus Bus
	ic  *interrupt.Controller

	state ExecState

	// haltBugPending records that HALT ran with a pending interrupt while
	// IME was off: the next opcode fetch must not advance PC.
	haltBugPending bool

	// locked is entered by the hardware's undefined opcodes, which freeze
	// the core until power-off. Not reachable through defined programs.
	locked bool

	// Cycles is the lifetime T-cycle counter.
	Cycles uint64

	// instCycles accumulates the cost of the instruction in flight.
	instCycles uint8
}

// New creates a CPU with post-boot register values, attached to bus and ic.
func New(bus Bus, ic *interrupt.Controller) *CPU {
	return &CPU{
		Regs:  NewRegisters(),
		bus:   bus,
		ic:    ic,
		state: StateRunning,
	}
}

// State returns the execution state.
func (c *CPU) State() ExecState { return c.state }

// Wake delivers the external wake signal that ends the stopped state.
func (c *CPU) Wake() {
	if c.state == StateStopped {
		c.state = StateRunning
	}
}

// Step advances the machine by one unit of work: an idle tick, an interrupt
// dispatch, or one instruction. It returns the T-cycles consumed, which the
// host must forward to the peripherals before the next call.
func (c *CPU) Step() uint8 {
	c.instCycles = 0

	if c.locked || c.state == StateStopped {
		c.Cycles += idleCycles
		return idleCycles
	}

	if c.state == StateHalted {
		if c.ic.Pending() == 0 {
			c.Cycles += idleCycles
			return idleCycles
		}
		// An interrupt ends the halt whether or not IME allows dispatch.
		c.state = StateRunning
	}

	if c.ic.MasterEnabled() && c.ic.Pending() != 0 {
		c.service()
		c.Cycles += uint64(c.instCycles)
		return c.instCycles
	}

	// EI enables IME only after the following instruction completes, so
	// capture the armed state before executing.
	commitEnable := c.ic.EnableScheduled()

	opcode := c.fetchOpcode()
	in := &primary[opcode]
	if in.fn == nil {
		panic(decodeGap{opcode: opcode})
	}
	in.fn(c)

	if commitEnable {
		c.ic.CommitScheduledEnable()
	}

	c.Cycles += uint64(c.instCycles)
	return c.instCycles
}

// service dispatches the highest-priority pending interrupt: IME drops, the
// pending bit clears, PC is pushed through the bus and control transfers to
// the fixed vector. Costs 20 T-cycles, charged like an instruction.
func (c *CPU) service() {
	src, ok := c.ic.NextPending()
	if !ok {
		return
	}
	c.ic.Acknowledge(src)
	c.internal(8)
	c.push(c.Regs.PC)
	c.internal(4)
	c.Regs.PC = src.Vector()
}

// decodeGap is the panic payload for a hole in the decode tables. Both
// tables are fully populated, so hitting one means the tables themselves
// are wrong, not the program under emulation.
type decodeGap struct {
	opcode uint8
}

func (g decodeGap) Error() string {
	return "cpu: no decoder for opcode"
}

// Bus access helpers. Every access folds its cycle cost into the
// instruction total.

func (c *CPU) read(addr uint16) uint8 {
	v, n := c.bus.Read(addr)
	c.instCycles += n
	return v
}

func (c *CPU) write(addr uint16, value uint8) {
	c.instCycles += c.bus.Write(addr, value)
}

// internal charges machine cycles with no bus activity.
func (c *CPU) internal(n uint8) {
	c.instCycles += n
}

// fetchOpcode fetches the next opcode byte. The halt bug makes exactly one
// fetch fail to advance PC, re-reading the same byte on the next fetch.
func (c *CPU) fetchOpcode() uint8 {
	v := c.read(c.Regs.PC)
	if c.haltBugPending {
		c.haltBugPending = false
	} else {
		c.Regs.PC++
	}
	return v
}

func (c *CPU) fetchByte() uint8 {
	v := c.read(c.Regs.PC)
	c.Regs.PC++
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := uint16(c.fetchByte())
	hi := uint16(c.fetchByte())
	return hi<<8 | lo
}

func (c *CPU) push(v uint16) {
	c.Regs.SP -= 2
	c.write(c.Regs.SP, uint8(v))      //nolint:gosec // G115: byte extraction
	c.write(c.Regs.SP+1, uint8(v>>8)) //nolint:gosec // G115: byte extraction
}

func (c *CPU) pop() uint16 {
	lo := uint16(c.read(c.Regs.SP))
	hi := uint16(c.read(c.Regs.SP + 1))
	c.Regs.SP += 2
	return hi<<8 | lo
}

// halt implements the HALT opcode, including the halt bug: with IME off and
// an interrupt already pending the CPU fails to halt and instead skips one
// PC increment on the next fetch.
func (c *CPU) halt() {
	if !c.ic.MasterEnabled() && c.ic.Pending() != 0 {
		c.haltBugPending = true
		return
	}
	c.state = StateHalted
}

// stop implements the STOP opcode: all clocking ends until the external
// wake signal. The padding byte is skipped without a fetch.
func (c *CPU) stop() {
	c.state = StateStopped
	c.Regs.PC++
}

// State capture for snapshots.

// SnapshotState is the serializable CPU state.
type SnapshotState struct {
	Regs           Registers
	State          ExecState
	HaltBugPending bool
	Locked         bool
	Cycles         uint64
}

// Snapshot captures the CPU state.
func (c *CPU) Snapshot() SnapshotState {
	return SnapshotState{
		Regs:           *c.Regs,
		State:          c.state,
		HaltBugPending: c.haltBugPending,
		Locked:         c.locked,
		Cycles:         c.Cycles,
	}
}

// Restore replaces the CPU state.
func (c *CPU) Restore(s SnapshotState) {
	*c.Regs = s.Regs
	c.state = s.State
	c.haltBugPending = s.HaltBugPending
	c.locked = s.Locked
	c.Cycles = s.Cycles
}
