// Package cartridge implements Game Boy cartridge images and the bank
// controllers (MBCs) that expose more ROM and RAM than the raw address
// space. The controller variant is fixed at load time from the header and
// never changes afterwards.
package cartridge

import (
	"errors"
	"fmt"
)

// Header is the parsed cartridge header ($0100-$014F). Only the fields the
// core consumes are interpreted; the rest are carried raw.
type Header struct {
	EntryPoint [4]byte  // $0100-$0103
	Logo       [48]byte // $0104-$0133

	rawTitle [16]byte // $0134-$0143

	CGBFlag         byte    // $0143
	NewLicenseeCode [2]byte // $0144-$0145
	SGBFlag         byte    // $0146

	ControllerType ControllerType // $0147: selects the bank controller variant
	ROMSizeCode    byte           // $0148
	RAMSizeCode    byte           // $0149

	DestinationCode byte    // $014A
	OldLicenseeCode byte    // $014B
	MaskROMVersion  byte    // $014C
	HeaderChecksum  byte    // $014D
	GlobalChecksum  [2]byte // $014E-$014F
}

// ControllerType is the bank-controller selector byte at $0147.
type ControllerType byte

// Controller types the core recognizes.
const (
	TypeROMOnly          ControllerType = 0x00
	TypeMBC1             ControllerType = 0x01
	TypeMBC1RAM          ControllerType = 0x02
	TypeMBC1RAMBattery   ControllerType = 0x03
	TypeMBC2             ControllerType = 0x05
	TypeMBC2Battery      ControllerType = 0x06
	TypeROMRAM           ControllerType = 0x08
	TypeROMRAMBattery    ControllerType = 0x09
	TypeMBC3TimerBattery ControllerType = 0x0F
	TypeMBC3TimerRAMBatt ControllerType = 0x10
	TypeMBC3             ControllerType = 0x11
	TypeMBC3RAM          ControllerType = 0x12
	TypeMBC3RAMBattery   ControllerType = 0x13
	TypeMBC5             ControllerType = 0x19
	TypeMBC5RAM          ControllerType = 0x1A
	TypeMBC5RAMBattery   ControllerType = 0x1B
	TypeMBC5Rumble       ControllerType = 0x1C
	TypeMBC5RumbleRAM    ControllerType = 0x1D
	TypeMBC5RumbleRAMBat ControllerType = 0x1E
)

var controllerNames = map[ControllerType]string{
	TypeROMOnly:          "ROM ONLY",
	TypeMBC1:             "MBC1",
	TypeMBC1RAM:          "MBC1+RAM",
	TypeMBC1RAMBattery:   "MBC1+RAM+BATTERY",
	TypeMBC2:             "MBC2",
	TypeMBC2Battery:      "MBC2+BATTERY",
	TypeROMRAM:           "ROM+RAM",
	TypeROMRAMBattery:    "ROM+RAM+BATTERY",
	TypeMBC3TimerBattery: "MBC3+TIMER+BATTERY",
	TypeMBC3TimerRAMBatt: "MBC3+TIMER+RAM+BATTERY",
	TypeMBC3:             "MBC3",
	TypeMBC3RAM:          "MBC3+RAM",
	TypeMBC3RAMBattery:   "MBC3+RAM+BATTERY",
	TypeMBC5:             "MBC5",
	TypeMBC5RAM:          "MBC5+RAM",
	TypeMBC5RAMBattery:   "MBC5+RAM+BATTERY",
	TypeMBC5Rumble:       "MBC5+RUMBLE",
	TypeMBC5RumbleRAM:    "MBC5+RUMBLE+RAM",
	TypeMBC5RumbleRAMBat: "MBC5+RUMBLE+RAM+BATTERY",
}

// String returns a human-readable name for the controller type.
func (t ControllerType) String() string {
	if name, ok := controllerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN (0x%02X)", byte(t))
}

// HasRAM reports whether the controller type wires external (or, for MBC2,
// built-in) RAM.
func (t ControllerType) HasRAM() bool {
	switch t {
	case TypeMBC1RAM, TypeMBC1RAMBattery,
		TypeMBC2, TypeMBC2Battery,
		TypeROMRAM, TypeROMRAMBattery,
		TypeMBC3TimerRAMBatt, TypeMBC3RAM, TypeMBC3RAMBattery,
		TypeMBC5RAM, TypeMBC5RAMBattery,
		TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBat:
		return true
	default:
		return false
	}
}

// HasBattery reports whether the cartridge carries battery-backed state.
func (t ControllerType) HasBattery() bool {
	switch t {
	case TypeMBC1RAMBattery, TypeMBC2Battery, TypeROMRAMBattery,
		TypeMBC3TimerBattery, TypeMBC3TimerRAMBatt, TypeMBC3RAMBattery,
		TypeMBC5RAMBattery, TypeMBC5RumbleRAMBat:
		return true
	default:
		return false
	}
}

// HasRTC reports whether the controller carries the real-time clock.
func (t ControllerType) HasRTC() bool {
	return t == TypeMBC3TimerBattery || t == TypeMBC3TimerRAMBatt
}

const (
	romBankSize = 0x4000 // 16 KiB
	ramBankSize = 0x2000 // 8 KiB
)

// ROMBanks returns the number of 16 KiB ROM banks the header claims.
func (h *Header) ROMBanks() int {
	if h.ROMSizeCode > 0x08 {
		return 0
	}
	return 2 << h.ROMSizeCode
}

// ROMSizeBytes returns the total ROM size the header claims.
func (h *Header) ROMSizeBytes() int {
	return h.ROMBanks() * romBankSize
}

// RAMBanks returns the number of 8 KiB RAM banks the header claims.
func (h *Header) RAMBanks() int {
	switch h.RAMSizeCode {
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// RAMSizeBytes returns the total external RAM size the header claims.
func (h *Header) RAMSizeBytes() int {
	return h.RAMBanks() * ramBankSize
}

// Title returns the cartridge title, trimmed at the first NUL.
func (h *Header) Title() string {
	for i, b := range h.rawTitle {
		if b == 0 {
			return string(h.rawTitle[:i])
		}
	}
	return string(h.rawTitle[:])
}

// ErrImageTooSmall indicates the image cannot contain a full header.
var ErrImageTooSmall = errors.New("image too small for cartridge header")

// ErrHeaderChecksum indicates the header checksum does not verify.
var ErrHeaderChecksum = errors.New("header checksum mismatch")

const headerEnd = 0x0150

// ParseHeader parses the header from a raw image.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrImageTooSmall, len(rom), headerEnd)
	}

	h := &Header{
		CGBFlag:         rom[0x0143],
		SGBFlag:         rom[0x0146],
		ControllerType:  ControllerType(rom[0x0147]),
		ROMSizeCode:     rom[0x0148],
		RAMSizeCode:     rom[0x0149],
		DestinationCode: rom[0x014A],
		OldLicenseeCode: rom[0x014B],
		MaskROMVersion:  rom[0x014C],
		HeaderChecksum:  rom[0x014D],
	}
	copy(h.EntryPoint[:], rom[0x0100:0x0104])
	copy(h.Logo[:], rom[0x0104:0x0134])
	copy(h.rawTitle[:], rom[0x0134:0x0144])
	copy(h.NewLicenseeCode[:], rom[0x0144:0x0146])
	copy(h.GlobalChecksum[:], rom[0x014E:0x0150])

	if sum := checksum(rom); sum != h.HeaderChecksum {
		return nil, fmt.Errorf("%w: computed 0x%02X, header says 0x%02X",
			ErrHeaderChecksum, sum, h.HeaderChecksum)
	}
	return h, nil
}

// checksum computes the header checksum over $0134-$014C.
func checksum(rom []byte) byte {
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}
