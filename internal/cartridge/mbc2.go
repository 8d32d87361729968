package cartridge

// MBC2 supports up to 256 KiB of ROM and carries 512 half-bytes of built-in
// RAM. A single write window below $4000 doubles as RAM enable and ROM bank
// select, disambiguated by address bit 8: clear targets the enable latch,
// set targets the bank register. Only the low nibble of each RAM cell is
// wired; the upper nibble reads back as 1s.
type MBC2 struct {
	header *Header
	rom    []byte
	ram    [512]uint8

	ramEnable bool
	romBank   uint8 // 4 bits, 0 aliased to 1

	romBanks int
}

const mbc2RAMSize = 512

func newMBC2(rom []byte, header *Header) *MBC2 {
	return &MBC2{
		header:   header,
		rom:      rom,
		romBank:  1,
		romBanks: header.ROMBanks(),
	}
}

// Read reads a byte through the current banking state.
func (c *MBC2) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return romByte(c.rom, 0, addr)

	case addr < 0x8000:
		return romByte(c.rom, maskBank(int(c.romBank), c.romBanks), addr-0x4000)

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable {
			return openBus
		}
		// The 512 cells echo through the whole $A000-$BFFF window.
		return c.ram[(addr-0xA000)%mbc2RAMSize] | 0xF0

	default:
		return openBus
	}
}

// Write updates the banking registers or built-in RAM.
func (c *MBC2) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x4000:
		if addr&0x0100 == 0 {
			c.ramEnable = value&0x0F == 0x0A
		} else {
			c.romBank = value & 0x0F
			if c.romBank == 0 {
				c.romBank = 1
			}
		}

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable {
			return
		}
		c.ram[(addr-0xA000)%mbc2RAMSize] = value & 0x0F
	}
}

// Step is a no-op; MBC2 has no cartridge-side clock.
func (c *MBC2) Step(uint8) {}

// Header returns the cartridge header.
func (c *MBC2) Header() *Header { return c.header }

// HasBattery reports battery-backed RAM.
func (c *MBC2) HasBattery() bool { return c.header.ControllerType.HasBattery() }

// RAM returns a copy of the built-in RAM contents.
func (c *MBC2) RAM() []byte { return copyRAM(c.ram[:]) }

// LoadRAM restores built-in RAM contents.
func (c *MBC2) LoadRAM(data []byte) error { return loadRAM(c.ram[:], data) }

// Snapshot captures the banking and RAM state.
func (c *MBC2) Snapshot() State {
	return State{
		ROMBank:   uint16(c.romBank),
		RAMEnable: c.ramEnable,
		RAM:       copyRAM(c.ram[:]),
	}
}

// Restore replaces the banking and RAM state.
func (c *MBC2) Restore(s State) error {
	c.romBank = uint8(s.ROMBank) & 0x0F
	if c.romBank == 0 {
		c.romBank = 1
	}
	c.ramEnable = s.RAMEnable
	return loadRAM(c.ram[:], s.RAM)
}
