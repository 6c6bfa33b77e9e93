package ppu

// Palette maps the four DMG shades, lightest first, to packed pixels.
type Palette [4]uint32

// RGBA packs a colour so that its little-endian byte layout is R, G, B, A
func RGBA(r, g, b uint8) uint32 {
	return 0xFF<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// Unpack returns the colour channels of a packed pixel
func Unpack(pixel uint32) (r, g, b, a uint8) {
	return uint8(pixel), uint8(pixel >> 8), uint8(pixel >> 16), uint8(pixel >> 24)
}

var (
	// GreyPalette is the default neutral palette
	GreyPalette = Palette{
		RGBA(0xFF, 0xFF, 0xFF),
		RGBA(0xAA, 0xAA, 0xAA),
		RGBA(0x55, 0x55, 0x55),
		RGBA(0x00, 0x00, 0x00),
	}

	// GreenPalette approximates the original LCD
	GreenPalette = Palette{
		RGBA(0x9B, 0xBC, 0x0F),
		RGBA(0x8B, 0xAC, 0x0F),
		RGBA(0x30, 0x62, 0x30),
		RGBA(0x0F, 0x38, 0x0F),
	}
)

// PaletteByName returns a named palette
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case "", "grey", "gray":
		return GreyPalette, true
	case "green":
		return GreenPalette, true
	}
	return Palette{}, false
}
