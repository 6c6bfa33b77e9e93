package ppu

// windowVisible reports whether the window covers part of the current line
func (p *PPU) windowVisible() bool {
	return p.lcdc&lcdcWindowEnable != 0 && p.lcdc&lcdcBGEnable != 0 &&
		p.wy <= p.ly && p.wx <= 166
}

// tileRow returns the two bit planes of one row of a background/window tile
func (p *PPU) tileRow(tile uint8, row int) (uint8, uint8) {
	var base int
	if p.lcdc&lcdcTileData != 0 {
		base = int(tile) * 16
	} else {
		base = 0x1000 + int(int8(tile))*16
	}
	return p.vram[base+row*2], p.vram[base+row*2+1]
}

func colorIndex(lo, hi uint8, bit uint) uint8 {
	return (hi>>bit&1)<<1 | lo>>bit&1
}

func shade(palette, index uint8) uint8 {
	return palette >> (index * 2) & 0x03
}

// renderLine composes the current line into the back buffer
func (p *PPU) renderLine() {
	line := int(p.ly)
	out := p.back[line*ScreenWidth : (line+1)*ScreenWidth]

	p.renderBackground(out)
	if p.lcdc&lcdcOBJEnable != 0 {
		p.renderSprites(out)
	}
}

func (p *PPU) renderBackground(out []uint32) {
	if p.lcdc&lcdcBGEnable == 0 {
		for x := range out {
			p.bgIndex[x] = 0
			out[x] = p.palette[0]
		}
		return
	}

	bgMap := 0x1800
	if p.lcdc&lcdcBGMap != 0 {
		bgMap = 0x1C00
	}
	winMap := 0x1800
	if p.lcdc&lcdcWindowMap != 0 {
		winMap = 0x1C00
	}

	window := p.windowVisible()
	windowStart := int(p.wx) - 7
	bgY := int(p.scy+p.ly) & 0xFF

	for x := 0; x < ScreenWidth; x++ {
		var mapBase, px, py int
		if window && x >= windowStart {
			mapBase, px, py = winMap, x-windowStart, p.windowLine
		} else {
			mapBase, px, py = bgMap, (x+int(p.scx))&0xFF, bgY
		}

		tile := p.vram[mapBase+(py/8)*32+px/8]
		lo, hi := p.tileRow(tile, py%8)
		index := colorIndex(lo, hi, uint(7-px%8))

		p.bgIndex[x] = index
		out[x] = p.palette[shade(p.bgp, index)]
	}

	if window && windowStart < ScreenWidth {
		p.windowLine++
	}
}

func (p *PPU) renderSprites(out []uint32) {
	height := p.spriteHeight()
	line := int(p.ly)

	for x := 0; x < ScreenWidth; x++ {
		// lineSprites is ordered by priority; the first opaque pixel wins
		for i := 0; i < p.spriteCount; i++ {
			s := &p.lineSprites[i]
			col := x - s.x
			if col < 0 || col >= 8 {
				continue
			}

			row := line - s.y
			if row < 0 || row >= height {
				continue
			}
			if s.flags&0x40 != 0 {
				row = height - 1 - row
			}
			tile := s.tile
			if height == 16 {
				tile &= 0xFE
			}
			addr := int(tile)*16 + row*2
			lo, hi := p.vram[addr], p.vram[addr+1]

			bit := uint(7 - col)
			if s.flags&0x20 != 0 {
				bit = uint(col)
			}
			index := colorIndex(lo, hi, bit)
			if index == 0 {
				continue
			}

			if s.flags&0x80 == 0 || p.bgIndex[x] == 0 {
				palette := p.obp0
				if s.flags&0x10 != 0 {
					palette = p.obp1
				}
				out[x] = p.palette[shade(palette, index)]
			}
			break
		}
	}
}
