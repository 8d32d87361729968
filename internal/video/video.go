// Package video implements the LCD controller as seen from the bus: it owns
// video RAM, object memory and the LCD register block, walks the per-scanline
// mode sequence from the machine's cycle stream, and raises the VBlank and
// STAT interrupts. It also answers the bus's access-cost query for the
// regions it owns, since those costs depend on the current mode and are
// hardware-revision dependent rather than fixed.
package video

// Screen dimensions in pixels.
const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// Mode is the LCD controller mode, visible in STAT bits 0-1.
type Mode uint8

// LCD modes.
const (
	ModeHBlank  Mode = 0
	ModeVBlank  Mode = 1
	ModeOAMScan Mode = 2
	ModeDraw    Mode = 3
)

// Scanline timing in T-cycles (dots).
const (
	dotsOAMScan  = 80
	dotsDraw     = 172
	dotsHBlank   = 204
	dotsPerLine  = 456
	linesVisible = 144
	linesTotal   = 154
)

// Register addresses.
const (
	LCDC = 0xFF40
	STAT = 0xFF41
	SCY  = 0xFF42
	SCX  = 0xFF43
	LY   = 0xFF44
	LYC  = 0xFF45
	BGP  = 0xFF47
	OBP0 = 0xFF48
	OBP1 = 0xFF49
	WY   = 0xFF4A
	WX   = 0xFF4B
)

// LCDC bits.
const (
	lcdcEnable     = 1 << 7
	lcdcWindowMap  = 1 << 6
	lcdcWindowOn   = 1 << 5
	lcdcTileData   = 1 << 4
	lcdcBGMap      = 1 << 3
	lcdcObjSize    = 1 << 2
	lcdcObjOn      = 1 << 1
	lcdcBGWindowOn = 1 << 0
)

// STAT bits.
const (
	statLYCIRQ   = 1 << 6
	statMode2IRQ = 1 << 5
	statMode1IRQ = 1 << 4
	statMode0IRQ = 1 << 3
	statLYCFlag  = 1 << 2
	statModeMask = 0x03
)

// Memory sizes.
const (
	vramSize = 0x2000
	oamSize  = 0xA0
)

// VBlankFunc raises the VBlank interrupt; StatFunc raises the LCD STAT
// interrupt.
type (
	VBlankFunc func()
	StatFunc   func()
)

// LCD is the video peripheral.
type LCD struct {
	vram [vramSize]uint8
	oam  [oamSize]uint8

	lcdc, stat      uint8
	scy, scx        uint8
	ly, lyc         uint8
	bgp, obp0, obp1 uint8
	wy, wx          uint8

	mode Mode
	dots uint16

	frame         [ScreenWidth * ScreenHeight]uint8
	frameComplete bool

	// Per-region bus access cost in T-cycles. Revision-dependent; the bus
	// queries rather than hard-codes it, and hosts may tune it.
	vramCost uint8
	oamCost  uint8

	sprites []sprite // scanline scratch, reused across lines

	requestVBlank VBlankFunc
	requestStat   StatFunc
}

// DefaultAccessCost is the standard cost of one bus access in T-cycles.
const DefaultAccessCost = 4

// New creates an LCD in the documented post-boot register state.
func New(requestVBlank VBlankFunc, requestStat StatFunc) *LCD {
	return &LCD{
		lcdc:          0x91,
		stat:          0x85,
		bgp:           0xFC,
		mode:          ModeOAMScan,
		vramCost:      DefaultAccessCost,
		oamCost:       DefaultAccessCost,
		sprites:       make([]sprite, 0, 10),
		requestVBlank: requestVBlank,
		requestStat:   requestStat,
	}
}

// SetAccessCosts overrides the per-access cost for VRAM and OAM. Exposed
// for hosts validating against specific hardware revisions.
func (l *LCD) SetAccessCosts(vram, oam uint8) {
	l.vramCost = vram
	l.oamCost = oam
}

// AccessCycles answers the bus's cost query for an address in a region this
// peripheral owns.
func (l *LCD) AccessCycles(addr uint16) uint8 {
	if addr >= 0xFE00 && addr < 0xFEA0 {
		return l.oamCost
	}
	if addr >= 0x8000 && addr < 0xA000 {
		return l.vramCost
	}
	return DefaultAccessCost
}

// Step advances the mode sequence by the given number of T-cycles.
func (l *LCD) Step(cycles uint8) {
	if l.lcdc&lcdcEnable == 0 {
		return
	}

	l.dots += uint16(cycles)
	for {
		switch l.mode {
		case ModeOAMScan:
			if l.dots < dotsOAMScan {
				return
			}
			l.dots -= dotsOAMScan
			l.setMode(ModeDraw)

		case ModeDraw:
			if l.dots < dotsDraw {
				return
			}
			l.dots -= dotsDraw
			l.renderScanline()
			l.setMode(ModeHBlank)

		case ModeHBlank:
			if l.dots < dotsHBlank {
				return
			}
			l.dots -= dotsHBlank
			l.ly++
			l.compareLYC()
			if l.ly >= linesVisible {
				l.setMode(ModeVBlank)
				l.frameComplete = true
				if l.requestVBlank != nil {
					l.requestVBlank()
				}
			} else {
				l.setMode(ModeOAMScan)
			}

		case ModeVBlank:
			if l.dots < dotsPerLine {
				return
			}
			l.dots -= dotsPerLine
			l.ly++
			if l.ly >= linesTotal {
				l.ly = 0
				l.setMode(ModeOAMScan)
			}
			l.compareLYC()
		}
	}
}

func (l *LCD) setMode(mode Mode) {
	l.mode = mode
	l.stat = l.stat&^statModeMask | uint8(mode)

	var irq bool
	switch mode {
	case ModeHBlank:
		irq = l.stat&statMode0IRQ != 0
	case ModeVBlank:
		irq = l.stat&statMode1IRQ != 0
	case ModeOAMScan:
		irq = l.stat&statMode2IRQ != 0
	case ModeDraw:
	}
	if irq && l.requestStat != nil {
		l.requestStat()
	}
}

func (l *LCD) compareLYC() {
	if l.ly == l.lyc {
		l.stat |= statLYCFlag
		if l.stat&statLYCIRQ != 0 && l.requestStat != nil {
			l.requestStat()
		}
	} else {
		l.stat &^= statLYCFlag
	}
}

// CurrentMode returns the active LCD mode.
func (l *LCD) CurrentMode() Mode { return l.mode }

// ReadVRAM reads video RAM through the mode gate: during draw the CPU sees
// open bus.
func (l *LCD) ReadVRAM(offset uint16) uint8 {
	if l.mode == ModeDraw {
		return 0xFF
	}
	if offset < vramSize {
		return l.vram[offset]
	}
	return 0xFF
}

// WriteVRAM writes video RAM; blocked during draw.
func (l *LCD) WriteVRAM(offset uint16, value uint8) {
	if l.mode == ModeDraw {
		return
	}
	if offset < vramSize {
		l.vram[offset] = value
	}
}

// ReadOAM reads object memory; blocked during OAM scan and draw.
func (l *LCD) ReadOAM(offset uint16) uint8 {
	if l.mode == ModeOAMScan || l.mode == ModeDraw {
		return 0xFF
	}
	if offset < oamSize {
		return l.oam[offset]
	}
	return 0xFF
}

// WriteOAM writes object memory; blocked during OAM scan and draw.
func (l *LCD) WriteOAM(offset uint16, value uint8) {
	if l.mode == ModeOAMScan || l.mode == ModeDraw {
		return
	}
	if offset < oamSize {
		l.oam[offset] = value
	}
}

// WriteOAMDirect bypasses the mode gate for the DMA engine.
func (l *LCD) WriteOAMDirect(offset uint16, value uint8) {
	if offset < oamSize {
		l.oam[offset] = value
	}
}

// ReadRegister reads an LCD register.
func (l *LCD) ReadRegister(addr uint16) uint8 {
	switch addr {
	case LCDC:
		return l.lcdc
	case STAT:
		return l.stat | 0x80
	case SCY:
		return l.scy
	case SCX:
		return l.scx
	case LY:
		return l.ly
	case LYC:
		return l.lyc
	case BGP:
		return l.bgp
	case OBP0:
		return l.obp0
	case OBP1:
		return l.obp1
	case WY:
		return l.wy
	case WX:
		return l.wx
	default:
		return 0xFF
	}
}

// WriteRegister writes an LCD register.
func (l *LCD) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case LCDC:
		wasOn := l.lcdc&lcdcEnable != 0
		l.lcdc = value
		if wasOn && value&lcdcEnable == 0 {
			// Turning the panel off resets the scan position.
			l.ly = 0
			l.dots = 0
			l.setMode(ModeHBlank)
		}
	case STAT:
		// Bits 3-6 writable; mode and LYC flag are controller-owned.
		l.stat = l.stat&0x87 | value&0x78
	case SCY:
		l.scy = value
	case SCX:
		l.scx = value
	case LY:
		// Read-only on hardware; writes are dropped.
	case LYC:
		l.lyc = value
		l.compareLYC()
	case BGP:
		l.bgp = value
	case OBP0:
		l.obp0 = value
	case OBP1:
		l.obp1 = value
	case WY:
		l.wy = value
	case WX:
		l.wx = value
	}
}

// Frame returns the framebuffer of 2-bit shades.
func (l *LCD) Frame() *[ScreenWidth * ScreenHeight]uint8 {
	return &l.frame
}

// TakeFrame reports and clears the frame-complete flag, so a frontend can
// present exactly one image per VBlank.
func (l *LCD) TakeFrame() bool {
	done := l.frameComplete
	l.frameComplete = false
	return done
}

// State is the serializable LCD state, framebuffer excluded: it is derived
// output and regenerates within one frame.
type State struct {
	VRAM [vramSize]uint8
	OAM  [oamSize]uint8

	LCDC, STAT uint8
	SCY, SCX   uint8
	LY, LYC    uint8
	BGP        uint8
	OBP0, OBP1 uint8
	WY, WX     uint8

	Mode Mode
	Dots uint16
}

// Snapshot captures the LCD state.
func (l *LCD) Snapshot() State {
	return State{
		VRAM: l.vram,
		OAM:  l.oam,
		LCDC: l.lcdc, STAT: l.stat,
		SCY: l.scy, SCX: l.scx,
		LY: l.ly, LYC: l.lyc,
		BGP: l.bgp, OBP0: l.obp0, OBP1: l.obp1,
		WY: l.wy, WX: l.wx,
		Mode: l.mode,
		Dots: l.dots,
	}
}

// Restore replaces the LCD state.
func (l *LCD) Restore(s State) {
	l.vram = s.VRAM
	l.oam = s.OAM
	l.lcdc, l.stat = s.LCDC, s.STAT
	l.scy, l.scx = s.SCY, s.SCX
	l.ly, l.lyc = s.LY, s.LYC
	l.bgp, l.obp0, l.obp1 = s.BGP, s.OBP0, s.OBP1
	l.wy, l.wx = s.WY, s.WX
	l.mode = s.Mode
	l.dots = s.Dots
	l.frameComplete = false
}
