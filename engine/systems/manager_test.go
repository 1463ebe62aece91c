package systems

import (
	"bytes"
	"testing"

	"golang.org/x/text/language"

	"github.com/grimhold/oubliette/engine/config"
	"github.com/grimhold/oubliette/engine/core"
)

func newManagerRig(t *testing.T) (*fakeReader, *fakeBackend, *GraphicsSystem) {
	t.Helper()

	reader := newFakeReader()
	reader.put("Data", "MAIN.PAL", greyRampPalette())

	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	backend := newFakeBackend()
	gs, err := NewGraphicsSystem(cfg, reader, backend, fakeProjector{})
	if err != nil {
		t.Fatalf("NewGraphicsSystem: %v", err)
	}
	t.Cleanup(func() { gs.Shutdown() })
	return reader, backend, gs
}

func TestGraphicsSystemWiring(t *testing.T) {
	_, _, gs := newManagerRig(t)

	if gs.Palettes() == nil || gs.Sheets() == nil || gs.Bitmaps() == nil ||
		gs.Fonts() == nil || gs.Animations() == nil || gs.Registry() == nil {
		t.Fatal("every subsystem must be constructed")
	}
	if _, err := gs.Palettes().LoadDefaultPalette(); err != nil {
		t.Fatalf("LoadDefaultPalette: %v", err)
	}
}

func TestGraphicsSystemUpdateTarget(t *testing.T) {
	reader, _, gs := newManagerRig(t)
	reader.put("Data", "Gui.tab", spriteTable(4, 8, 8))
	reader.put("Data", "Gui.dat", []byte("old"))

	sheet, err := gs.Sheets().LoadSpriteTable("Data", "Gui", true, nil)
	if err != nil {
		t.Fatalf("LoadSpriteTable: %v", err)
	}

	reader.put("Data", "Gui.dat", []byte("new"))
	fresh := newFakeBackend()
	fresh.generation = 2
	if err := gs.UpdateTarget(fresh); err != nil {
		t.Fatalf("UpdateTarget: %v", err)
	}

	if !bytes.Equal(fresh.sheetData["Gui"], []byte("new")) {
		t.Fatal("the new target must be fed freshly re-read archive bytes")
	}
	if sheet.Generation != 2 {
		t.Fatalf("sheet generation is %d, want the new target's 2", sheet.Generation)
	}
}

func TestGraphicsSystemFiresEventCodes(t *testing.T) {
	_, _, gs := newManagerRig(t)

	type fired struct {
		code core.SystemEventCode
		data core.EventContext
	}
	var events []fired
	listener := &struct{ name string }{"test"}
	onEvent := func(code core.SystemEventCode, sender, listenerInst interface{}, data core.EventContext) bool {
		events = append(events, fired{code: code, data: data})
		return false
	}
	if !core.EventRegister(core.EVENT_CODE_TARGET_CHANGED, listener, onEvent) {
		t.Fatal("EventRegister(target) failed")
	}
	if !core.EventRegister(core.EVENT_CODE_LANGUAGE_CHANGED, listener, onEvent) {
		t.Fatal("EventRegister(language) failed")
	}

	fresh := newFakeBackend()
	fresh.generation = 3
	if err := gs.UpdateTarget(fresh); err != nil {
		t.Fatalf("UpdateTarget: %v", err)
	}
	if err := gs.SetLanguage(language.Italian); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("%d event(s) fired, want 2", len(events))
	}
	if events[0].code != core.EVENT_CODE_TARGET_CHANGED || events[0].data.Data.U32[0] != 3 {
		t.Fatalf("first event = %+v, want target change at generation 3", events[0])
	}
	if events[1].code != core.EVENT_CODE_LANGUAGE_CHANGED || events[1].data.Data.C[0] != "it" {
		t.Fatalf("second event = %+v, want language change to 'it'", events[1])
	}
}

func TestGraphicsSystemSetLanguage(t *testing.T) {
	reader, _, gs := newManagerRig(t)
	reader.put("Data", "Font2.tab", spriteTable(60, 8, 10))
	reader.put("Data", "Font2.dat", []byte("glyphs"))

	font, err := gs.Fonts().LoadFontSheet("Data", "Font2", false, nil, 1, 2)
	if err != nil {
		t.Fatalf("LoadFontSheet: %v", err)
	}
	before := font.Face()

	if err := gs.SetLanguage(language.French); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if font.Face() == before {
		t.Fatal("the language change must rebuild the font delegate")
	}
	if gs.Fonts().Language() != language.French {
		t.Fatal("the font system must track the new language")
	}
}
