package memory

import (
	"testing"

	"dotmatrix/internal/cartridge"
	"dotmatrix/internal/interrupt"
)

// fakeVideo records accesses and answers the cost query with configurable
// prices.
type fakeVideo struct {
	vram [0x2000]uint8
	oam  [0xA0]uint8
	regs map[uint16]uint8

	vramCost uint8
	oamCost  uint8
}

func newFakeVideo() *fakeVideo {
	return &fakeVideo{
		regs:     make(map[uint16]uint8),
		vramCost: DefaultCycles,
		oamCost:  DefaultCycles,
	}
}

func (v *fakeVideo) ReadVRAM(offset uint16) uint8         { return v.vram[offset] }
func (v *fakeVideo) WriteVRAM(offset uint16, val uint8)   { v.vram[offset] = val }
func (v *fakeVideo) ReadOAM(offset uint16) uint8          { return v.oam[offset] }
func (v *fakeVideo) WriteOAM(offset uint16, val uint8)    { v.oam[offset] = val }
func (v *fakeVideo) WriteOAMDirect(o uint16, val uint8)   { v.oam[o] = val }
func (v *fakeVideo) ReadRegister(addr uint16) uint8       { return v.regs[addr] }
func (v *fakeVideo) WriteRegister(addr uint16, val uint8) { v.regs[addr] = val }

func (v *fakeVideo) AccessCycles(addr uint16) uint8 {
	if addr >= 0xFE00 {
		return v.oamCost
	}
	return v.vramCost
}

// fakePeripheral is a register block that remembers the last write.
type fakePeripheral struct {
	last  uint16
	value uint8
}

func (p *fakePeripheral) Read(addr uint16) uint8 { return uint8(addr) } //nolint:gosec // G115: test echo
func (p *fakePeripheral) Write(addr uint16, value uint8) {
	p.last = addr
	p.value = value
}

func testCartridge(t *testing.T) cartridge.Cartridge {
	t.Helper()
	rom := make([]byte, 0x8000)
	for i := range rom {
		rom[i] = 0x42
	}
	copy(rom[0x0134:], "BUSTEST")
	rom[0x0147] = 0x00
	rom[0x0148] = 0x00
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x014D] = sum
	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("cartridge.New() error: %v", err)
	}
	return cart
}

func TestWorkRAMAndEcho(t *testing.T) {
	bus := NewBus()

	cycles := bus.Write(0xC123, 0x55)
	if cycles != DefaultCycles {
		t.Errorf("write cycles = %d, want %d", cycles, DefaultCycles)
	}

	v, cycles := bus.Read(0xC123)
	if v != 0x55 || cycles != DefaultCycles {
		t.Errorf("Read = (%02X, %d), want (55, %d)", v, cycles, DefaultCycles)
	}

	// Echo RAM mirrors work RAM both ways.
	if v, _ := bus.Read(0xE123); v != 0x55 {
		t.Errorf("echo read = %02X, want 0x55", v)
	}
	bus.Write(0xF000, 0x66)
	if v, _ := bus.Read(0xD000); v != 0x66 {
		t.Errorf("work RAM behind echo write = %02X, want 0x66", v)
	}
}

func TestHighRAM(t *testing.T) {
	bus := NewBus()
	bus.Write(0xFF80, 0x11)
	bus.Write(0xFFFE, 0x22)

	if v, _ := bus.Read(0xFF80); v != 0x11 {
		t.Errorf("HRAM = %02X, want 0x11", v)
	}
	if v, _ := bus.Read(0xFFFE); v != 0x22 {
		t.Errorf("HRAM = %02X, want 0x22", v)
	}
}

func TestUnusableRegion(t *testing.T) {
	bus := NewBus()

	bus.Write(0xFEA0, 0x42)
	if v, _ := bus.Read(0xFEA0); v != 0xFF {
		t.Errorf("unusable region read = %02X, want FF", v)
	}
	if v, _ := bus.Read(0xFEFF); v != 0xFF {
		t.Errorf("unusable region read = %02X, want FF", v)
	}
}

func TestUnmappedIO(t *testing.T) {
	bus := NewBus()

	// No peripheral attached: open bus, writes swallowed, no panic.
	bus.Write(0xFF03, 0x42)
	if v, _ := bus.Read(0xFF03); v != 0xFF {
		t.Errorf("unmapped I/O read = %02X, want FF", v)
	}
	if v, _ := bus.Read(0xFF7F); v != 0xFF {
		t.Errorf("unmapped I/O read = %02X, want FF", v)
	}
}

func TestCartridgeRouting(t *testing.T) {
	bus := NewBus()
	bus.SetCartridge(testCartridge(t))

	if v, _ := bus.Read(0x3FFF); v != 0x42 {
		t.Errorf("ROM read = %02X, want 0x42", v)
	}
	// Detached regions are open bus.
	other := NewBus()
	if v, _ := other.Read(0x0000); v != 0xFF {
		t.Errorf("no-cartridge read = %02X, want FF", v)
	}
}

func TestVideoRouting(t *testing.T) {
	bus := NewBus()
	video := newFakeVideo()
	bus.SetVideo(video)

	bus.Write(0x8010, 0xAB)
	if video.vram[0x10] != 0xAB {
		t.Errorf("VRAM = %02X, want AB", video.vram[0x10])
	}
	bus.Write(0xFE05, 0xCD)
	if video.oam[0x05] != 0xCD {
		t.Errorf("OAM = %02X, want CD", video.oam[0x05])
	}
	bus.Write(0xFF40, 0x91)
	if video.regs[0xFF40] != 0x91 {
		t.Errorf("LCDC = %02X, want 91", video.regs[0xFF40])
	}
}

func TestVideoAccessCosts(t *testing.T) {
	bus := NewBus()
	video := newFakeVideo()
	video.vramCost = 8
	video.oamCost = 12
	bus.SetVideo(video)

	if _, cycles := bus.Read(0x9000); cycles != 8 {
		t.Errorf("VRAM cost = %d, want 8", cycles)
	}
	if cycles := bus.Write(0xFE10, 0); cycles != 12 {
		t.Errorf("OAM cost = %d, want 12", cycles)
	}
	// Everything else keeps the default price.
	if _, cycles := bus.Read(0xC000); cycles != DefaultCycles {
		t.Errorf("WRAM cost = %d, want %d", cycles, DefaultCycles)
	}
}

func TestPeripheralDispatch(t *testing.T) {
	bus := NewBus()
	tm := &fakePeripheral{}
	sp := &fakePeripheral{}
	bus.SetTimer(tm)
	bus.SetSerial(sp)

	bus.Write(0xFF05, 0x7F)
	if tm.last != 0xFF05 || tm.value != 0x7F {
		t.Errorf("timer write routed to %04X=%02X, want FF05=7F", tm.last, tm.value)
	}
	bus.Write(0xFF02, 0x81)
	if sp.last != 0xFF02 || sp.value != 0x81 {
		t.Errorf("serial write routed to %04X=%02X, want FF02=81", sp.last, sp.value)
	}
}

func TestInterruptRegisters(t *testing.T) {
	bus := NewBus()
	ic := interrupt.New()
	bus.SetInterrupts(ic)

	bus.Write(0xFFFF, 0x1F)
	if v, _ := bus.Read(0xFFFF); v != 0x1F {
		t.Errorf("IE = %02X, want 1F", v)
	}

	bus.Write(0xFF0F, 0x05)
	if v, _ := bus.Read(0xFF0F); v != 0xE5 {
		t.Errorf("IF = %02X, want E5 (upper bits read 1)", v)
	}
}

func TestAudioRegisterStorage(t *testing.T) {
	bus := NewBus()

	bus.Write(0xFF26, 0x80)
	if v, _ := bus.Read(0xFF26); v != 0x80 {
		t.Errorf("NR52 = %02X, want 80", v)
	}
	bus.Write(0xFF3F, 0x5A) // last wave RAM byte
	if v, _ := bus.Read(0xFF3F); v != 0x5A {
		t.Errorf("wave RAM = %02X, want 5A", v)
	}
}

func TestOAMDMA(t *testing.T) {
	bus := NewBus()
	video := newFakeVideo()
	bus.SetVideo(video)

	// Source data in work RAM page $C1.
	for i := uint16(0); i < dmaLength; i++ {
		bus.Write(0xC100+i, uint8(i)) //nolint:gosec // G115: test data
	}

	bus.Write(0xFF46, 0xC1)
	if !bus.DMAActive() {
		t.Fatal("DMA must be active after the trigger write")
	}

	// During the transfer the CPU sees open bus outside high RAM.
	if v, _ := bus.Read(0xC100); v != 0xFF {
		t.Errorf("read during DMA = %02X, want FF", v)
	}
	bus.Write(0xFF80, 0x33)
	if v, _ := bus.Read(0xFF80); v != 0x33 {
		t.Error("high RAM must stay accessible during DMA")
	}

	// One byte per machine cycle, 160 machine cycles total.
	for i := 0; i < dmaLength-1; i++ {
		bus.StepDMA(4)
	}
	if !bus.DMAActive() {
		t.Fatal("DMA finished early")
	}
	bus.StepDMA(4)
	if bus.DMAActive() {
		t.Fatal("DMA must finish after 160 machine cycles")
	}

	for i := uint16(0); i < dmaLength; i++ {
		if video.oam[i] != uint8(i) { //nolint:gosec // G115: test data
			t.Fatalf("OAM[%02X] = %02X, want %02X", i, video.oam[i], uint8(i))
		}
	}

	// The transfer register reads back the source page.
	if v, _ := bus.Read(0xFF46); v != 0xC1 {
		t.Errorf("DMA register = %02X, want C1", v)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	bus := NewBus()
	bus.Write(0xC000, 0x12)
	bus.Write(0xFF80, 0x34)
	bus.Write(0xFF10, 0x56)

	snap := bus.Snapshot()

	other := NewBus()
	other.Restore(snap)

	if v, _ := other.Read(0xC000); v != 0x12 {
		t.Errorf("restored WRAM = %02X, want 12", v)
	}
	if v, _ := other.Read(0xFF80); v != 0x34 {
		t.Errorf("restored HRAM = %02X, want 34", v)
	}
	if v, _ := other.Read(0xFF10); v != 0x56 {
		t.Errorf("restored audio register = %02X, want 56", v)
	}
}
