package cartridge

import (
	"errors"
	"fmt"
)

// Cartridge is the bank-controller-facing view of a loaded image. All reads
// and writes inside the cartridge windows ($0000-$7FFF, $A000-$BFFF) land
// here; the controller translates them through its banking state. Undefined
// accesses read the open-bus sentinel and ignore writes, never an error.
type Cartridge interface {
	// Read reads a byte from the cartridge address space.
	Read(addr uint16) uint8

	// Write writes a byte: bank-select registers below $8000, external RAM
	// at $A000-$BFFF.
	Write(addr uint16, value uint8)

	// Step forwards elapsed T-cycles to cartridge-side clocks (MBC3 RTC).
	Step(cycles uint8)

	// Header returns the parsed header.
	Header() *Header

	// HasBattery reports battery-backed state worth persisting.
	HasBattery() bool

	// RAM returns a copy of the external RAM contents, or nil.
	RAM() []byte

	// LoadRAM restores external RAM contents from save data.
	LoadRAM(data []byte) error

	// Snapshot captures the full banking and RAM state.
	Snapshot() State

	// Restore replaces the banking and RAM state.
	Restore(s State) error
}

// State is the serializable banking state shared by all controller
// variants; each variant uses the fields it owns.
type State struct {
	ROMBank   uint16
	RAMBank   uint8
	RAMEnable bool
	Mode      uint8 // MBC1 banking-mode bit
	RAM       []byte
	RTC       RTCState // MBC3 only
}

// Open-bus sentinel returned for undefined cartridge reads.
const openBus = 0xFF

// ErrUnknownController indicates an unrecognized bank-controller type byte.
var ErrUnknownController = errors.New("unknown bank controller type")

// ErrImageSize indicates the image is smaller than its header claims.
var ErrImageSize = errors.New("image smaller than header claims")

// ErrRAMSize indicates save data does not fit the cartridge RAM.
var ErrRAMSize = errors.New("save data larger than cartridge RAM")

// New parses the header and builds the matching bank-controller variant.
// This is the only place a cartridge can fail; once loaded, every access is
// defined behavior.
func New(rom []byte) (Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	if len(rom) < header.ROMSizeBytes() {
		return nil, fmt.Errorf("%w: header claims %d bytes, image has %d",
			ErrImageSize, header.ROMSizeBytes(), len(rom))
	}

	switch header.ControllerType {
	case TypeROMOnly, TypeROMRAM, TypeROMRAMBattery:
		return newROMOnly(rom, header), nil
	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBattery:
		return newMBC1(rom, header), nil
	case TypeMBC2, TypeMBC2Battery:
		return newMBC2(rom, header), nil
	case TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBattery, TypeMBC3TimerBattery, TypeMBC3TimerRAMBatt:
		return newMBC3(rom, header), nil
	case TypeMBC5, TypeMBC5RAM, TypeMBC5RAMBattery, TypeMBC5Rumble, TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBat:
		return newMBC5(rom, header), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownController, byte(header.ControllerType))
	}
}

// maskBank reduces a bank index against the physical bank count. Every
// variant reduces before use so oversized selects wrap instead of escaping
// the image.
func maskBank(bank, count int) int {
	if count <= 0 {
		return 0
	}
	return bank % count
}

// allocRAM builds the external RAM backing for a header, or nil.
func allocRAM(h *Header) []byte {
	if !h.ControllerType.HasRAM() {
		return nil
	}
	if size := h.RAMSizeBytes(); size > 0 {
		return make([]byte, size)
	}
	return nil
}

// copyRAM clones RAM contents for snapshots and save files.
func copyRAM(ram []byte) []byte {
	if ram == nil {
		return nil
	}
	out := make([]byte, len(ram))
	copy(out, ram)
	return out
}

// loadRAM copies save data into RAM, rejecting oversize images.
func loadRAM(ram, data []byte) error {
	if ram == nil {
		return nil
	}
	if len(data) > len(ram) {
		return fmt.Errorf("%w: %d > %d", ErrRAMSize, len(data), len(ram))
	}
	copy(ram, data)
	return nil
}
