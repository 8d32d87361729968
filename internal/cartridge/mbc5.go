package cartridge

// MBC5 supports up to 8 MiB of ROM through a 9-bit bank register split
// across two write windows, and up to 128 KiB of RAM. Unlike earlier
// controllers, bank 0 is selectable in the switchable window; there is no
// zero-bank aliasing.
type MBC5 struct {
	header *Header
	rom    []byte
	ram    []byte

	ramEnable bool
	romBank   uint16 // 9 bits
	ramBank   uint8  // 4 bits

	romBanks int
	ramBanks int
}

func newMBC5(rom []byte, header *Header) *MBC5 {
	return &MBC5{
		header:   header,
		rom:      rom,
		ram:      allocRAM(header),
		romBank:  1,
		romBanks: header.ROMBanks(),
		ramBanks: header.RAMBanks(),
	}
}

// Read reads a byte through the current banking state.
func (c *MBC5) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return romByte(c.rom, 0, addr)

	case addr < 0x8000:
		return romByte(c.rom, maskBank(int(c.romBank), c.romBanks), addr-0x4000)

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable || c.ram == nil {
			return openBus
		}
		return ramByte(c.ram, maskBank(int(c.ramBank), c.ramBanks), addr-0xA000)

	default:
		return openBus
	}
}

// Write updates the banking registers or external RAM.
func (c *MBC5) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnable = value&0x0F == 0x0A

	case addr < 0x3000:
		c.romBank = c.romBank&0x100 | uint16(value)

	case addr < 0x4000:
		c.romBank = c.romBank&0xFF | uint16(value&0x01)<<8

	case addr < 0x6000:
		c.ramBank = value & 0x0F

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable || c.ram == nil {
			return
		}
		setRAMByte(c.ram, maskBank(int(c.ramBank), c.ramBanks), addr-0xA000, value)
	}
}

// Step is a no-op; MBC5 has no cartridge-side clock.
func (c *MBC5) Step(uint8) {}

// Header returns the cartridge header.
func (c *MBC5) Header() *Header { return c.header }

// HasBattery reports battery-backed RAM.
func (c *MBC5) HasBattery() bool { return c.header.ControllerType.HasBattery() }

// RAM returns a copy of the external RAM contents.
func (c *MBC5) RAM() []byte { return copyRAM(c.ram) }

// LoadRAM restores external RAM contents.
func (c *MBC5) LoadRAM(data []byte) error { return loadRAM(c.ram, data) }

// Snapshot captures the banking and RAM state.
func (c *MBC5) Snapshot() State {
	return State{
		ROMBank:   c.romBank,
		RAMBank:   c.ramBank,
		RAMEnable: c.ramEnable,
		RAM:       copyRAM(c.ram),
	}
}

// Restore replaces the banking and RAM state.
func (c *MBC5) Restore(s State) error {
	c.romBank = s.ROMBank & 0x1FF
	c.ramBank = s.RAMBank & 0x0F
	c.ramEnable = s.RAMEnable
	return loadRAM(c.ram, s.RAM)
}
