package video

// Scanline rendering. One line is composed at the draw->hblank transition:
// background, then window, then up to ten sprites, matching the DMG layer
// and priority rules.

type sprite struct {
	x, y int
	tile uint8
	attr uint8
}

// Sprite attribute bits.
const (
	attrBehindBG = 1 << 7
	attrYFlip    = 1 << 6
	attrXFlip    = 1 << 5
	attrPalette  = 1 << 4
)

func (l *LCD) renderScanline() {
	if int(l.ly) >= ScreenHeight {
		return
	}
	line := l.frame[int(l.ly)*ScreenWidth : (int(l.ly)+1)*ScreenWidth]

	// rawBG keeps pre-palette background indices for sprite priority.
	var rawBG [ScreenWidth]uint8

	if l.lcdc&lcdcBGWindowOn != 0 {
		l.drawBackground(line, &rawBG)
		if l.lcdc&lcdcWindowOn != 0 {
			l.drawWindow(line, &rawBG)
		}
	} else {
		for x := range line {
			line[x] = 0
		}
	}

	if l.lcdc&lcdcObjOn != 0 {
		l.drawSprites(line, &rawBG)
	}
}

func (l *LCD) drawBackground(line []uint8, rawBG *[ScreenWidth]uint8) {
	mapBase := uint16(0x1800)
	if l.lcdc&lcdcBGMap != 0 {
		mapBase = 0x1C00
	}

	y := uint16(l.ly) + uint16(l.scy)
	row := y / 8 % 32

	for x := 0; x < ScreenWidth; x++ {
		sx := uint16(x) + uint16(l.scx)
		col := sx / 8 % 32
		tile := l.vram[mapBase+row*32+col]
		idx := l.tilePixel(l.tileAddr(tile), sx%8, y%8)
		rawBG[x] = idx
		line[x] = shade(idx, l.bgp)
	}
}

func (l *LCD) drawWindow(line []uint8, rawBG *[ScreenWidth]uint8) {
	if l.ly < l.wy {
		return
	}
	mapBase := uint16(0x1800)
	if l.lcdc&lcdcWindowMap != 0 {
		mapBase = 0x1C00
	}

	wy := uint16(l.ly - l.wy)
	row := wy / 8 % 32
	startX := int(l.wx) - 7
	if startX < 0 {
		startX = 0
	}

	for x := startX; x < ScreenWidth; x++ {
		wx := uint16(x - startX)
		tile := l.vram[mapBase+row*32+wx/8%32]
		idx := l.tilePixel(l.tileAddr(tile), wx%8, wy%8)
		rawBG[x] = idx
		line[x] = shade(idx, l.bgp)
	}
}

func (l *LCD) drawSprites(line []uint8, rawBG *[ScreenWidth]uint8) {
	height := 8
	if l.lcdc&lcdcObjSize != 0 {
		height = 16
	}

	l.sprites = l.sprites[:0]
	for i := 0; i < 40 && len(l.sprites) < 10; i++ {
		base := i * 4
		y := int(l.oam[base]) - 16
		if ly := int(l.ly); ly < y || ly >= y+height {
			continue
		}
		l.sprites = append(l.sprites, sprite{
			x:    int(l.oam[base+1]) - 8,
			y:    y,
			tile: l.oam[base+2],
			attr: l.oam[base+3],
		})
	}

	// Later OAM entries lose ties, so paint in reverse scan order.
	for i := len(l.sprites) - 1; i >= 0; i-- {
		spr := l.sprites[i]
		row := uint16(int(l.ly) - spr.y)
		if spr.attr&attrYFlip != 0 {
			row = uint16(height-1) - row
		}

		tile := uint16(spr.tile)
		if height == 16 {
			tile &= 0xFE
			if row >= 8 {
				tile++
				row -= 8
			}
		}

		palette := l.obp0
		if spr.attr&attrPalette != 0 {
			palette = l.obp1
		}

		for px := uint16(0); px < 8; px++ {
			x := spr.x + int(px)
			if x < 0 || x >= ScreenWidth {
				continue
			}
			col := px
			if spr.attr&attrXFlip != 0 {
				col = 7 - px
			}
			idx := l.tilePixel(tile*16, col, row)
			if idx == 0 {
				continue // transparent
			}
			if spr.attr&attrBehindBG != 0 && rawBG[x] != 0 {
				continue
			}
			line[x] = shade(idx, palette)
		}
	}
}

// tileAddr resolves a tile index to its VRAM offset under the LCDC
// addressing mode: unsigned from $8000 or signed around $9000.
func (l *LCD) tileAddr(tile uint8) uint16 {
	if l.lcdc&lcdcTileData != 0 {
		return uint16(tile) * 16
	}
	return uint16(0x1000 + int(int8(tile))*16) //nolint:gosec // G115: signed tile addressing
}

// tilePixel extracts the 2-bit color index at (x, y) of the tile at addr.
func (l *LCD) tilePixel(addr, x, y uint16) uint8 {
	lo := l.vram[addr+y*2]
	hi := l.vram[addr+y*2+1]
	bit := 7 - x
	return (hi>>bit)&1<<1 | (lo>>bit)&1
}

// shade maps a color index through a palette register to a 2-bit shade.
func shade(idx, palette uint8) uint8 {
	return palette >> (idx * 2) & 0x03
}
