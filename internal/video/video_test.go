package video

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// stepDots advances the controller by n T-cycles in bus-sized chunks.
func stepDots(l *LCD, n int) {
	for n > 0 {
		c := n
		if c > 4 {
			c = 4
		}
		l.Step(uint8(c)) //nolint:gosec // G115: c <= 4
		n -= c
	}
}

func TestModeSequence(t *testing.T) {
	l := New(nil, nil)

	if got := l.CurrentMode(); got != ModeOAMScan {
		t.Fatalf("initial mode = %d, want OAM scan", got)
	}

	stepDots(l, dotsOAMScan)
	if got := l.CurrentMode(); got != ModeDraw {
		t.Errorf("mode after %d dots = %d, want draw", dotsOAMScan, got)
	}

	stepDots(l, dotsDraw)
	if got := l.CurrentMode(); got != ModeHBlank {
		t.Errorf("mode = %d, want hblank", got)
	}

	stepDots(l, dotsHBlank)
	if got := l.CurrentMode(); got != ModeOAMScan {
		t.Errorf("mode at line start = %d, want OAM scan", got)
	}
	if got := l.ReadRegister(LY); got != 1 {
		t.Errorf("LY = %d, want 1", got)
	}

	// STAT mode bits track the controller.
	if got := l.ReadRegister(STAT) & 0x03; got != uint8(ModeOAMScan) {
		t.Errorf("STAT mode bits = %d, want %d", got, ModeOAMScan)
	}
}

func TestVBlank(t *testing.T) {
	vblanks := 0
	l := New(func() { vblanks++ }, nil)

	stepDots(l, linesVisible*dotsPerLine)

	if got := l.CurrentMode(); got != ModeVBlank {
		t.Errorf("mode at line 144 = %d, want vblank", got)
	}
	if got := l.ReadRegister(LY); got != linesVisible {
		t.Errorf("LY = %d, want %d", got, linesVisible)
	}
	if vblanks != 1 {
		t.Errorf("vblank interrupts = %d, want 1", vblanks)
	}
	if !l.TakeFrame() {
		t.Error("TakeFrame() = false, want true at vblank")
	}
	if l.TakeFrame() {
		t.Error("TakeFrame() = true, want flag cleared by first take")
	}
}

func TestFrameWrap(t *testing.T) {
	l := New(nil, nil)

	stepDots(l, linesTotal*dotsPerLine)

	if got := l.ReadRegister(LY); got != 0 {
		t.Errorf("LY after a full frame = %d, want 0", got)
	}
	if got := l.CurrentMode(); got != ModeOAMScan {
		t.Errorf("mode = %d, want OAM scan", got)
	}
}

func TestLYCCompare(t *testing.T) {
	stats := 0
	l := New(nil, func() { stats++ })
	l.WriteRegister(LYC, 5)
	l.WriteRegister(STAT, statLYCIRQ)

	stepDots(l, 4*dotsPerLine)
	if got := l.ReadRegister(STAT) & statLYCFlag; got != 0 {
		t.Errorf("LYC flag set at line 4, want clear")
	}
	if stats != 0 {
		t.Errorf("stat interrupts = %d, want 0 before match", stats)
	}

	stepDots(l, dotsPerLine)
	if got := l.ReadRegister(STAT) & statLYCFlag; got == 0 {
		t.Errorf("LYC flag clear at line 5, want set")
	}
	if stats != 1 {
		t.Errorf("stat interrupts = %d, want 1", stats)
	}
}

func TestSTATModeInterrupts(t *testing.T) {
	stats := 0
	l := New(nil, func() { stats++ })
	l.WriteRegister(STAT, statMode0IRQ)

	// One hblank entry per line.
	stepDots(l, 3*dotsPerLine)
	if stats != 3 {
		t.Errorf("stat interrupts = %d, want 3", stats)
	}
}

func TestVRAMModeGate(t *testing.T) {
	l := New(nil, nil)

	// OAM scan: VRAM open, OAM blocked.
	l.WriteVRAM(0x10, 0xAB)
	if got := l.ReadVRAM(0x10); got != 0xAB {
		t.Errorf("VRAM during OAM scan = %02X, want AB", got)
	}
	l.WriteOAM(0x05, 0xCD)
	if got := l.ReadOAM(0x05); got != 0xFF {
		t.Errorf("OAM during OAM scan = %02X, want FF", got)
	}
	if got := l.oam[0x05]; got != 0 {
		t.Errorf("blocked OAM write landed: %02X", got)
	}

	// Draw: both blocked.
	stepDots(l, dotsOAMScan)
	l.WriteVRAM(0x10, 0x99)
	if got := l.ReadVRAM(0x10); got != 0xFF {
		t.Errorf("VRAM during draw = %02X, want FF", got)
	}
	if got := l.vram[0x10]; got != 0xAB {
		t.Errorf("blocked VRAM write landed: %02X", got)
	}

	// HBlank: everything open.
	stepDots(l, dotsDraw)
	l.WriteOAM(0x05, 0xCD)
	if got := l.ReadOAM(0x05); got != 0xCD {
		t.Errorf("OAM during hblank = %02X, want CD", got)
	}

	// The DMA path ignores the gate even in a blocked mode.
	stepDots(l, dotsHBlank+dotsOAMScan)
	l.WriteOAMDirect(0x20, 0x42)
	if got := l.oam[0x20]; got != 0x42 {
		t.Errorf("direct OAM write = %02X, want 42", got)
	}
}

func TestAccessCycles(t *testing.T) {
	l := New(nil, nil)

	if got := l.AccessCycles(0x8800); got != DefaultAccessCost {
		t.Errorf("VRAM cost = %d, want %d", got, DefaultAccessCost)
	}

	l.SetAccessCosts(8, 12)
	if got := l.AccessCycles(0x8800); got != 8 {
		t.Errorf("VRAM cost = %d, want 8", got)
	}
	if got := l.AccessCycles(0xFE40); got != 12 {
		t.Errorf("OAM cost = %d, want 12", got)
	}
	if got := l.AccessCycles(0xFF40); got != DefaultAccessCost {
		t.Errorf("register cost = %d, want %d", got, DefaultAccessCost)
	}
}

func TestLCDDisable(t *testing.T) {
	l := New(nil, nil)
	stepDots(l, 10*dotsPerLine)

	l.WriteRegister(LCDC, 0x11) // panel off

	if got := l.ReadRegister(LY); got != 0 {
		t.Errorf("LY after disable = %d, want 0", got)
	}
	if got := l.CurrentMode(); got != ModeHBlank {
		t.Errorf("mode after disable = %d, want hblank", got)
	}

	// The clock is stopped while the panel is off.
	stepDots(l, 5*dotsPerLine)
	if got := l.ReadRegister(LY); got != 0 {
		t.Errorf("LY advanced while disabled: %d", got)
	}
}

func TestRegisterAccess(t *testing.T) {
	l := New(nil, nil)

	// STAT: only bits 3-6 writable, bit 7 reads 1.
	l.WriteRegister(STAT, 0xFF)
	if got := l.ReadRegister(STAT) & 0x78; got != 0x78 {
		t.Errorf("STAT irq bits = %02X, want 78", got)
	}
	if got := l.ReadRegister(STAT) & 0x80; got == 0 {
		t.Error("STAT bit 7 must read 1")
	}

	// LY is read-only.
	l.WriteRegister(LY, 0x42)
	if got := l.ReadRegister(LY); got != 0 {
		t.Errorf("LY after write = %d, want 0 (read-only)", got)
	}

	for _, reg := range []uint16{SCY, SCX, BGP, OBP0, OBP1, WY, WX} {
		l.WriteRegister(reg, 0x5A)
		if got := l.ReadRegister(reg); got != 0x5A {
			t.Errorf("register %04X = %02X, want 5A", reg, got)
		}
	}
}

func TestBackgroundRendering(t *testing.T) {
	l := New(nil, nil)

	// Tile 1 solid color 3, placed at the top-left map cell. The post-boot
	// LCDC selects unsigned tile addressing and the $9800 map.
	for i := 0x10; i < 0x20; i++ {
		l.vram[i] = 0xFF
	}
	l.vram[0x1800] = 1

	stepDots(l, dotsOAMScan+dotsDraw)

	frame := l.Frame()
	want := shade(3, l.bgp)
	for x := 0; x < 8; x++ {
		if frame[x] != want {
			t.Fatalf("pixel %d = %d, want %d", x, frame[x], want)
		}
	}
	if frame[8] != shade(0, l.bgp) {
		t.Errorf("pixel 8 = %d, want background color 0", frame[8])
	}
}

func TestSpriteRendering(t *testing.T) {
	l := New(nil, nil)
	l.WriteRegister(LCDC, 0x93) // post-boot value plus objects on
	l.WriteRegister(OBP0, 0xE4)

	// Tile 2 solid color 3; one sprite at the top-left corner.
	for i := 0x20; i < 0x30; i++ {
		l.vram[i] = 0xFF
	}
	l.oam[0] = 16 // y: top of the screen
	l.oam[1] = 8  // x: left edge
	l.oam[2] = 2
	l.oam[3] = 0

	stepDots(l, dotsOAMScan+dotsDraw)

	frame := l.Frame()
	want := shade(3, 0xE4)
	for x := 0; x < 8; x++ {
		if frame[x] != want {
			t.Fatalf("pixel %d = %d, want %d", x, frame[x], want)
		}
	}
	if frame[8] == want {
		t.Error("sprite bled past its 8-pixel width")
	}
}

func TestSpriteBehindBackground(t *testing.T) {
	l := New(nil, nil)
	l.WriteRegister(LCDC, 0x93)
	l.WriteRegister(OBP0, 0xE4)
	l.WriteRegister(BGP, 0xE4) // shade 1 for color 1, distinct from sprite shade 3

	// Background tile 1 solid color 1 under a behind-background sprite.
	for i := 0x10; i < 0x20; i += 2 {
		l.vram[i] = 0xFF // low plane only: color 1
	}
	l.vram[0x1800] = 1
	for i := 0x20; i < 0x30; i++ {
		l.vram[i] = 0xFF
	}
	l.oam[0] = 16
	l.oam[1] = 8
	l.oam[2] = 2
	l.oam[3] = attrBehindBG

	stepDots(l, dotsOAMScan+dotsDraw)

	frame := l.Frame()
	if want := shade(1, 0xE4); frame[0] != want {
		t.Errorf("pixel 0 = %d, want background %d (sprite behind)", frame[0], want)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := New(nil, nil)
	l.WriteVRAM(0x123, 0x45)
	l.WriteRegister(SCX, 0x10)
	l.WriteRegister(LYC, 0x20)
	stepDots(l, 3*dotsPerLine+100)

	snap := l.Snapshot()

	other := New(nil, nil)
	other.Restore(snap)
	if diff := cmp.Diff(snap, other.Snapshot()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}

	// Both controllers must stay in lockstep afterwards.
	stepDots(l, 2*dotsPerLine)
	stepDots(other, 2*dotsPerLine)
	if l.ReadRegister(LY) != other.ReadRegister(LY) || l.CurrentMode() != other.CurrentMode() {
		t.Errorf("diverged after restore: LY %d/%d mode %d/%d",
			l.ReadRegister(LY), other.ReadRegister(LY), l.CurrentMode(), other.CurrentMode())
	}
}
