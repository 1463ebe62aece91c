package systems

import (
	"errors"
	"testing"

	"github.com/grimhold/oubliette/engine/core"
)

func TestLoadPaletteIdentity(t *testing.T) {
	r := newRig(t)

	p1, err := r.palettes.LoadPalette("Data", "MAIN.PAL", false)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	p2, err := r.palettes.LoadPalette("Data", "MAIN.PAL", false)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if p1 != p2 {
		t.Fatal("second load must return the same palette instance")
	}
	if r.reader.reads["Data/MAIN.PAL"] != 1 {
		t.Fatalf("palette file read %d times, want 1", r.reader.reads["Data/MAIN.PAL"])
	}
}

func TestLoadPaletteFlagMismatchKeepsCached(t *testing.T) {
	r := newRig(t)

	p1, err := r.palettes.LoadPalette("Data", "MAIN.PAL", false)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	p2, err := r.palettes.LoadPalette("Data", "MAIN.PAL", true)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if p1 != p2 {
		t.Fatal("mismatched transparency flag must still return the cached instance")
	}
	if p2.TransparentLast {
		t.Fatal("cached palette must keep the flag it was built with")
	}
}

func TestLoadPaletteMissingIsCorrupt(t *testing.T) {
	r := newRig(t)

	_, err := r.palettes.LoadPalette("Data", "NOPE.PAL", false)
	if !errors.Is(err, core.ErrAssetCorrupt) {
		t.Fatalf("err = %v, want ErrAssetCorrupt", err)
	}
}

func TestLoadDefaultPalette(t *testing.T) {
	r := newRig(t)

	p, err := r.palettes.LoadDefaultPalette()
	if err != nil {
		t.Fatalf("LoadDefaultPalette: %v", err)
	}
	if p.Name != "MAIN.PAL" {
		t.Fatalf("default palette is '%s', want 'MAIN.PAL'", p.Name)
	}
}

func TestPaletteRebuildKeepsIdentityAndToken(t *testing.T) {
	r := newRig(t)

	p, err := r.palettes.LoadPalette("Data", "MAIN.PAL", false)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	token := p.Token
	before := p.Colors[10]

	// Mutate the backing bytes, then replay the recorded recipe.
	fresh := greyRampPalette()
	fresh[30] = 63
	fresh[31] = 0
	fresh[32] = 0
	r.reader.put("Data", "MAIN.PAL", fresh)

	rec := r.registry.recipes[token]
	if rec == nil {
		t.Fatal("palette recipe not recorded")
	}
	if err := rec.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if p.Token != token {
		t.Fatal("rebuild must preserve the identity token")
	}
	if p.Colors[10] == before {
		t.Fatal("rebuild must pick up the re-read palette bytes")
	}
	if p.Colors[10].R != 63<<2 {
		t.Fatalf("entry 10 red is %d, want %d", p.Colors[10].R, 63<<2)
	}
}

func TestGhostTable(t *testing.T) {
	r := newRig(t)

	if _, ok := r.palettes.GhostTable("MAIN.PAL"); ok {
		t.Fatal("ghost table must not exist before the palette loads")
	}
	p, err := r.palettes.LoadPalette("Data", "MAIN.PAL", false)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	remap, ok := r.palettes.GhostTable("MAIN.PAL")
	if !ok {
		t.Fatal("ghost table missing for a loaded palette")
	}
	if remap != p.GreyscaleRemap() {
		t.Fatal("ghost table must match the palette's derived remap")
	}
}

func TestPaletteRelease(t *testing.T) {
	r := newRig(t)

	p, err := r.palettes.LoadPalette("Data", "MAIN.PAL", false)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	r.palettes.Release("MAIN.PAL")

	if _, ok := r.registry.recipes[p.Token]; ok {
		t.Fatal("release must forget the recorded recipe")
	}
	p2, err := r.palettes.LoadPalette("Data", "MAIN.PAL", false)
	if err != nil {
		t.Fatalf("LoadPalette: %v", err)
	}
	if p2 == p {
		t.Fatal("load after release must construct a fresh instance")
	}
}
