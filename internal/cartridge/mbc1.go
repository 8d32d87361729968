package cartridge

// MBC1 supports up to 2 MiB of ROM and 32 KiB of RAM.
//
// The ROM bank is composed from two write windows: the low 5 bits from
// $2000-$3FFF and two more bits from $4000-$5FFF. The second register is
// shared with RAM banking; the mode bit at $6000-$7FFF decides whether it
// steers the fixed-bank window and RAM bank (mode 1) or only extends the
// switchable ROM bank (mode 0). A low-bits value of 0 is aliased to 1, so
// banks $00/$20/$40/$60 are unreachable through the switchable window.
type MBC1 struct {
	header *Header
	rom    []byte
	ram    []byte

	ramEnable bool
	bankLow   uint8 // $2000-$3FFF, 5 bits
	bankHigh  uint8 // $4000-$5FFF, 2 bits
	mode      uint8 // $6000-$7FFF, 1 bit

	romBanks int
	ramBanks int
}

func newMBC1(rom []byte, header *Header) *MBC1 {
	return &MBC1{
		header:   header,
		rom:      rom,
		ram:      allocRAM(header),
		bankLow:  1,
		romBanks: header.ROMBanks(),
		ramBanks: header.RAMBanks(),
	}
}

// fixedBank is the bank behind $0000-$3FFF: bank 0, except in mode 1 where
// the high register shifts it to $20/$40/$60.
func (c *MBC1) fixedBank() int {
	if c.mode == 1 {
		return maskBank(int(c.bankHigh)<<5, c.romBanks)
	}
	return 0
}

// switchBank is the bank behind $4000-$7FFF.
func (c *MBC1) switchBank() int {
	bank := int(c.bankLow) | int(c.bankHigh)<<5
	if bank&0x1F == 0 {
		bank |= 1
	}
	return maskBank(bank, c.romBanks)
}

// ramBank is the active external RAM bank; mode 0 pins it to 0.
func (c *MBC1) ramBank() int {
	if c.mode == 1 {
		return maskBank(int(c.bankHigh), c.ramBanks)
	}
	return 0
}

// Read reads a byte through the current banking state.
func (c *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return romByte(c.rom, c.fixedBank(), addr)

	case addr < 0x8000:
		return romByte(c.rom, c.switchBank(), addr-0x4000)

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable || c.ram == nil {
			return openBus
		}
		return ramByte(c.ram, c.ramBank(), addr-0xA000)

	default:
		return openBus
	}
}

// Write updates the banking registers or external RAM.
func (c *MBC1) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnable = value&0x0F == 0x0A

	case addr < 0x4000:
		c.bankLow = value & 0x1F
		if c.bankLow == 0 {
			c.bankLow = 1
		}

	case addr < 0x6000:
		c.bankHigh = value & 0x03

	case addr < 0x8000:
		c.mode = value & 0x01

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable || c.ram == nil {
			return
		}
		setRAMByte(c.ram, c.ramBank(), addr-0xA000, value)
	}
}

// Step is a no-op; MBC1 has no cartridge-side clock.
func (c *MBC1) Step(uint8) {}

// Header returns the cartridge header.
func (c *MBC1) Header() *Header { return c.header }

// HasBattery reports battery-backed RAM.
func (c *MBC1) HasBattery() bool { return c.header.ControllerType.HasBattery() }

// RAM returns a copy of the external RAM contents.
func (c *MBC1) RAM() []byte { return copyRAM(c.ram) }

// LoadRAM restores external RAM contents.
func (c *MBC1) LoadRAM(data []byte) error { return loadRAM(c.ram, data) }

// Snapshot captures the banking and RAM state.
func (c *MBC1) Snapshot() State {
	return State{
		ROMBank:   uint16(c.bankLow),
		RAMBank:   c.bankHigh,
		RAMEnable: c.ramEnable,
		Mode:      c.mode,
		RAM:       copyRAM(c.ram),
	}
}

// Restore replaces the banking and RAM state.
func (c *MBC1) Restore(s State) error {
	c.bankLow = uint8(s.ROMBank) & 0x1F
	if c.bankLow == 0 {
		c.bankLow = 1
	}
	c.bankHigh = s.RAMBank & 0x03
	c.ramEnable = s.RAMEnable
	c.mode = s.Mode & 0x01
	return loadRAM(c.ram, s.RAM)
}

// romByte reads from a reduced ROM bank; out-of-image reads are open bus.
func romByte(rom []byte, bank int, offset uint16) uint8 {
	pos := bank*romBankSize + int(offset)
	if pos < len(rom) {
		return rom[pos]
	}
	return openBus
}

// ramByte reads from a reduced RAM bank.
func ramByte(ram []byte, bank int, offset uint16) uint8 {
	pos := bank*ramBankSize + int(offset)
	if pos < len(ram) {
		return ram[pos]
	}
	return openBus
}

// setRAMByte writes into a reduced RAM bank; out-of-range writes are no-ops.
func setRAMByte(ram []byte, bank int, offset uint16, value uint8) {
	pos := bank*ramBankSize + int(offset)
	if pos < len(ram) {
		ram[pos] = value
	}
}
