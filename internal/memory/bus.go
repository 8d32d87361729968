// Package memory implements the address bus: the single entry point for all
// reads and writes in the 16-bit address space.
//
// Every access returns the value (for reads) together with its cycle cost.
// The bus never fails: unmapped and unusable addresses read the open-bus
// sentinel and swallow writes, exactly as the hardware behaves. Costs for
// regions owned by the video peripheral are obtained from it rather than
// hard-coded, since they depend on the LCD mode and hardware revision.
package memory

import (
	"dotmatrix/internal/cartridge"
	"dotmatrix/internal/interrupt"
)

// DefaultCycles is the cost of one bus access in T-cycles.
const DefaultCycles = 4

// Open-bus sentinel for undefined reads.
const openBus = 0xFF

// Video is the bus-facing view of the LCD peripheral, which owns video RAM,
// object memory, the LCD register block, and the access costs for all of
// them.
type Video interface {
	ReadVRAM(offset uint16) uint8
	WriteVRAM(offset uint16, value uint8)
	ReadOAM(offset uint16) uint8
	WriteOAM(offset uint16, value uint8)
	WriteOAMDirect(offset uint16, value uint8)
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
	AccessCycles(addr uint16) uint8
}

// Peripheral owns a span of I/O registers addressed by full bus address.
type Peripheral interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Joypad owns the P1 register.
type Joypad interface {
	Read() uint8
	Write(value uint8)
}

// Bus routes accesses to their owners. Backing storage belongs to the
// component responsible: the cartridge owns its ROM and RAM, peripherals
// own their registers, and the bus itself owns work RAM, high RAM and the
// audio register window.
type Bus struct {
	cart   cartridge.Cartridge
	video  Video
	joypad Joypad
	timer  Peripheral
	serial Peripheral
	ic     *interrupt.Controller

	wram [0x2000]uint8
	hram [0x7F]uint8

	// Audio register window ($FF10-$FF3F). Synthesis is out of scope;
	// the bytes are plain bus-owned storage so games can park state there.
	audio [0x30]uint8

	// OAM DMA engine state.
	dmaActive bool
	dmaSource uint16
	dmaIndex  uint16
}

// NewBus creates an empty bus; owners are attached with the Set methods.
func NewBus() *Bus {
	return &Bus{}
}

// SetCartridge attaches the cartridge.
func (b *Bus) SetCartridge(cart cartridge.Cartridge) { b.cart = cart }

// SetVideo attaches the video peripheral.
func (b *Bus) SetVideo(v Video) { b.video = v }

// SetJoypad attaches the joypad.
func (b *Bus) SetJoypad(j Joypad) { b.joypad = j }

// SetTimer attaches the timer register block ($FF04-$FF07).
func (b *Bus) SetTimer(t Peripheral) { b.timer = t }

// SetSerial attaches the serial register block ($FF01-$FF02).
func (b *Bus) SetSerial(s Peripheral) { b.serial = s }

// SetInterrupts attaches the interrupt controller ($FF0F, $FFFF).
func (b *Bus) SetInterrupts(ic *interrupt.Controller) { b.ic = ic }

// Cartridge returns the attached cartridge.
func (b *Bus) Cartridge() cartridge.Cartridge { return b.cart }

// cost returns the cycle cost of one access to addr.
func (b *Bus) cost(addr uint16) uint8 {
	if b.video != nil {
		if addr >= 0x8000 && addr < 0xA000 || addr >= 0xFE00 && addr < 0xFEA0 {
			return b.video.AccessCycles(addr)
		}
	}
	return DefaultCycles
}

// Read reads one byte and returns it with the access's cycle cost.
func (b *Bus) Read(addr uint16) (uint8, uint8) {
	cycles := b.cost(addr)

	// While OAM DMA runs, the CPU sees open bus everywhere but high RAM.
	if b.dmaActive && (addr < 0xFF80 || addr == 0xFFFF) {
		return openBus, cycles
	}
	return b.read(addr), cycles
}

func (b *Bus) read(addr uint16) uint8 {
	switch {
	case addr < 0x8000: // ROM banks, via the bank controller
		if b.cart != nil {
			return b.cart.Read(addr)
		}
		return openBus

	case addr < 0xA000: // video RAM
		if b.video != nil {
			return b.video.ReadVRAM(addr - 0x8000)
		}
		return openBus

	case addr < 0xC000: // external RAM, via the bank controller
		if b.cart != nil {
			return b.cart.Read(addr)
		}
		return openBus

	case addr < 0xE000: // work RAM
		return b.wram[addr-0xC000]

	case addr < 0xFE00: // echo RAM mirrors work RAM
		return b.wram[addr-0xE000]

	case addr < 0xFEA0: // object memory
		if b.video != nil {
			return b.video.ReadOAM(addr - 0xFE00)
		}
		return openBus

	case addr < 0xFF00: // unusable region
		return openBus

	case addr < 0xFF80: // I/O registers
		return b.readIO(addr)

	case addr < 0xFFFF: // high RAM
		return b.hram[addr-0xFF80]

	default: // interrupt enable
		if b.ic != nil {
			return b.ic.ReadEnable()
		}
		return openBus
	}
}

// Write writes one byte and returns the access's cycle cost.
func (b *Bus) Write(addr uint16, value uint8) uint8 {
	cycles := b.cost(addr)

	if b.dmaActive && (addr < 0xFF80 || addr == 0xFFFF) {
		return cycles
	}

	switch {
	case addr < 0x8000: // bank-select windows
		if b.cart != nil {
			b.cart.Write(addr, value)
		}

	case addr < 0xA000:
		if b.video != nil {
			b.video.WriteVRAM(addr-0x8000, value)
		}

	case addr < 0xC000:
		if b.cart != nil {
			b.cart.Write(addr, value)
		}

	case addr < 0xE000:
		b.wram[addr-0xC000] = value

	case addr < 0xFE00:
		b.wram[addr-0xE000] = value

	case addr < 0xFEA0:
		if b.video != nil {
			b.video.WriteOAM(addr-0xFE00, value)
		}

	case addr < 0xFF00:
		// unusable region: writes are no-ops

	case addr < 0xFF80:
		b.writeIO(addr, value)

	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value

	default:
		if b.ic != nil {
			b.ic.WriteEnable(value)
		}
	}
	return cycles
}

// readIO dispatches an I/O-block read to the owning peripheral. Unmapped
// addresses in the block behave as open bus.
func (b *Bus) readIO(addr uint16) uint8 {
	switch {
	case addr == 0xFF00:
		if b.joypad != nil {
			return b.joypad.Read()
		}

	case addr == 0xFF01 || addr == 0xFF02:
		if b.serial != nil {
			return b.serial.Read(addr)
		}

	case addr >= 0xFF04 && addr <= 0xFF07:
		if b.timer != nil {
			return b.timer.Read(addr)
		}

	case addr == 0xFF0F:
		if b.ic != nil {
			return b.ic.ReadPending()
		}

	case addr >= 0xFF10 && addr < 0xFF40:
		return b.audio[addr-0xFF10]

	case addr == 0xFF46:
		return uint8(b.dmaSource >> 8) //nolint:gosec // G115: DMA source page

	case addr >= 0xFF40 && addr <= 0xFF4B:
		if b.video != nil {
			return b.video.ReadRegister(addr)
		}
	}
	return openBus
}

// writeIO dispatches an I/O-block write to the owning peripheral. Writes to
// unmapped addresses are no-ops.
func (b *Bus) writeIO(addr uint16, value uint8) {
	switch {
	case addr == 0xFF00:
		if b.joypad != nil {
			b.joypad.Write(value)
		}

	case addr == 0xFF01 || addr == 0xFF02:
		if b.serial != nil {
			b.serial.Write(addr, value)
		}

	case addr >= 0xFF04 && addr <= 0xFF07:
		if b.timer != nil {
			b.timer.Write(addr, value)
		}

	case addr == 0xFF0F:
		if b.ic != nil {
			b.ic.WritePending(value)
		}

	case addr >= 0xFF10 && addr < 0xFF40:
		b.audio[addr-0xFF10] = value

	case addr == 0xFF46:
		b.startDMA(value)

	case addr >= 0xFF40 && addr <= 0xFF4B:
		if b.video != nil {
			b.video.WriteRegister(addr, value)
		}
	}
}

// OAM DMA copies 160 bytes from page<<8 into object memory, one byte per
// machine cycle.

const dmaLength = 0xA0

func (b *Bus) startDMA(page uint8) {
	// Pages above $DF would source from the bus's own top region; hardware
	// wraps them into work RAM, and so does the echo mapping here.
	b.dmaActive = true
	b.dmaSource = uint16(page) << 8
	b.dmaIndex = 0
}

// DMAActive reports whether an OAM DMA transfer is in flight.
func (b *Bus) DMAActive() bool { return b.dmaActive }

// StepDMA advances the DMA engine by the given number of T-cycles.
func (b *Bus) StepDMA(cycles uint8) {
	if !b.dmaActive {
		return
	}
	for consumed := uint8(0); consumed < cycles && b.dmaActive; consumed += 4 {
		value := b.read(b.dmaSource + b.dmaIndex)
		if b.video != nil {
			b.video.WriteOAMDirect(b.dmaIndex, value)
		}
		b.dmaIndex++
		if b.dmaIndex >= dmaLength {
			b.dmaActive = false
		}
	}
}

// State is the serializable bus-owned state.
type State struct {
	WRAM  [0x2000]uint8
	HRAM  [0x7F]uint8
	Audio [0x30]uint8

	DMAActive bool
	DMASource uint16
	DMAIndex  uint16
}

// Snapshot captures the bus-owned byte ranges and DMA engine.
func (b *Bus) Snapshot() State {
	return State{
		WRAM:      b.wram,
		HRAM:      b.hram,
		Audio:     b.audio,
		DMAActive: b.dmaActive,
		DMASource: b.dmaSource,
		DMAIndex:  b.dmaIndex,
	}
}

// Restore replaces the bus-owned byte ranges and DMA engine.
func (b *Bus) Restore(s State) {
	b.wram = s.WRAM
	b.hram = s.HRAM
	b.audio = s.Audio
	b.dmaActive = s.DMAActive
	b.dmaSource = s.DMASource
	b.dmaIndex = s.DMAIndex
}
