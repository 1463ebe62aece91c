package metadata

import (
	"fmt"
	"image/color"
)

/** @brief The number of color-table entries in a palette file. */
const PaletteEntries = 256

// Palette file components are 6-bit VGA values, scaled to 8 bits on load.
const paletteComponentShift = 2

/**
 * @brief A loaded palette together with its derived greyscale remap table.
 */
type Palette struct {
	/** @brief The logical name the palette was cached under. */
	Name string
	/** @brief The 8-bit color table. */
	Colors [PaletteEntries]color.RGBA
	/** @brief Whether the last entry was forced to the transparent sentinel. */
	TransparentLast bool
	/** @brief The resource identity token. */
	Token Token

	remap [PaletteEntries]uint8
}

// NewPalette decodes a raw 768-byte palette file. When transparentLast is
// set the final color-table entry is forced to the sentinel transparent
// magenta before the greyscale remap is derived.
func NewPalette(name string, raw []byte, transparentLast bool) (*Palette, error) {
	if len(raw) < PaletteEntries*3 {
		return nil, fmt.Errorf("palette '%s' is %d bytes, want at least %d", name, len(raw), PaletteEntries*3)
	}

	p := &Palette{
		Name:            name,
		TransparentLast: transparentLast,
		Token:           NewToken(),
	}
	for i := 0; i < PaletteEntries; i++ {
		p.Colors[i] = color.RGBA{
			R: raw[i*3] << paletteComponentShift,
			G: raw[i*3+1] << paletteComponentShift,
			B: raw[i*3+2] << paletteComponentShift,
			A: 0xff,
		}
	}
	if transparentLast {
		p.Colors[PaletteEntries-1] = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0x00}
	}

	p.deriveGreyscaleRemap()
	return p, nil
}

// deriveGreyscaleRemap maps every entry to the palette index nearest its
// luma-grey triple. Ties resolve to the lowest index, scan order first.
func (p *Palette) deriveGreyscaleRemap() {
	for i := 0; i < PaletteEntries; i++ {
		c := p.Colors[i]
		luma := int64(0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B))

		best := 0
		bestDist := int64(-1)
		for j := 0; j < PaletteEntries; j++ {
			e := p.Colors[j]
			dr := int64(e.R) - luma
			dg := int64(e.G) - luma
			db := int64(e.B) - luma
			dist := dr*dr + dg*dg + db*db
			if bestDist < 0 || dist < bestDist {
				bestDist = dist
				best = j
			}
		}
		p.remap[i] = uint8(best)
	}
}

// RemapIndex returns the greyscale-remap target of color-table entry i.
func (p *Palette) RemapIndex(i int) uint8 {
	return p.remap[i]
}

// GreyscaleRemap returns the full 256-entry ghost table.
func (p *Palette) GreyscaleRemap() [PaletteEntries]uint8 {
	return p.remap
}
