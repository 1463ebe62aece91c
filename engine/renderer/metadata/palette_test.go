package metadata

import (
	"testing"
)

func rawPalette(fill byte) []byte {
	raw := make([]byte, PaletteEntries*3)
	for i := range raw {
		raw[i] = fill
	}
	return raw
}

func TestNewPaletteScalesComponents(t *testing.T) {
	raw := rawPalette(0)
	raw[0], raw[1], raw[2] = 63, 31, 1

	p, err := NewPalette("test", raw, false)
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}
	c := p.Colors[0]
	if c.R != 63<<2 || c.G != 31<<2 || c.B != 1<<2 {
		t.Fatalf("entry 0 = %v, want the 6-bit components scaled by 4", c)
	}
	if c.A != 0xff {
		t.Fatal("opaque entries must carry full alpha")
	}
}

func TestNewPaletteShortFile(t *testing.T) {
	if _, err := NewPalette("test", make([]byte, 100), false); err == nil {
		t.Fatal("a short palette file must be rejected")
	}
}

func TestNewPaletteTransparentLast(t *testing.T) {
	p, err := NewPalette("test", rawPalette(20), true)
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}
	last := p.Colors[PaletteEntries-1]
	if last.R != 0xff || last.G != 0x00 || last.B != 0xff || last.A != 0x00 {
		t.Fatalf("last entry = %v, want the transparent magenta sentinel", last)
	}
	if !p.TransparentLast {
		t.Fatal("the flag must be recorded on the palette")
	}
}

func TestGreyscaleRemapNearestAndTieBreak(t *testing.T) {
	// Entry 0 is white, everything else black. Every dark entry's
	// luma-grey is black, and among the identical black candidates the
	// scan must keep the first, index 1.
	raw := rawPalette(0)
	raw[0], raw[1], raw[2] = 63, 63, 63

	p, err := NewPalette("test", raw, false)
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}
	if got := p.RemapIndex(0); got != 0 {
		t.Fatalf("white remaps to %d, want itself", got)
	}
	for i := 1; i < PaletteEntries; i++ {
		if got := p.RemapIndex(i); got != 1 {
			t.Fatalf("entry %d remaps to %d, want the lowest black index 1", i, got)
		}
	}
}

func TestGreyscaleRemapMinimizesSquaredDistance(t *testing.T) {
	raw := rawPalette(0)
	// A small ramp of greys plus one saturated color.
	greys := []byte{0, 10, 20, 30, 40, 50, 63}
	for i, g := range greys {
		raw[i*3], raw[i*3+1], raw[i*3+2] = g, g, g
	}
	red := len(greys)
	raw[red*3] = 63

	p, err := NewPalette("test", raw, false)
	if err != nil {
		t.Fatalf("NewPalette: %v", err)
	}

	// Brute-force check against the definition for every entry.
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
		if got := p.RemapIndex(i); got != uint8(best) {
			t.Fatalf("entry %d remaps to %d, want %d", i, got, best)
		}
	}
}
