package cartridge

// ROMOnly is a cartridge with no bank controller: up to 32 KiB of ROM
// mapped flat, plus an optional 8 KiB of always-enabled RAM.
type ROMOnly struct {
	header *Header
	rom    []byte
	ram    []byte
}

func newROMOnly(rom []byte, header *Header) *ROMOnly {
	return &ROMOnly{
		header: header,
		rom:    rom,
		ram:    allocRAM(header),
	}
}

// Read reads a byte from the cartridge.
func (c *ROMOnly) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return openBus

	case addr >= 0xA000 && addr < 0xC000:
		offset := int(addr - 0xA000)
		if offset < len(c.ram) {
			return c.ram[offset]
		}
		return openBus

	default:
		return openBus
	}
}

// Write writes a byte; only RAM is writable, ROM writes are ignored.
func (c *ROMOnly) Write(addr uint16, value uint8) {
	if addr >= 0xA000 && addr < 0xC000 {
		offset := int(addr - 0xA000)
		if offset < len(c.ram) {
			c.ram[offset] = value
		}
	}
}

// Step is a no-op; nothing on the cartridge is clocked.
func (c *ROMOnly) Step(uint8) {}

// Header returns the cartridge header.
func (c *ROMOnly) Header() *Header { return c.header }

// HasBattery reports battery-backed RAM.
func (c *ROMOnly) HasBattery() bool { return c.header.ControllerType.HasBattery() }

// RAM returns a copy of the external RAM contents.
func (c *ROMOnly) RAM() []byte { return copyRAM(c.ram) }

// LoadRAM restores external RAM contents.
func (c *ROMOnly) LoadRAM(data []byte) error { return loadRAM(c.ram, data) }

// Snapshot captures the cartridge state.
func (c *ROMOnly) Snapshot() State {
	return State{RAM: copyRAM(c.ram)}
}

// Restore replaces the cartridge state.
func (c *ROMOnly) Restore(s State) error {
	return loadRAM(c.ram, s.RAM)
}
