package systems

import (
	"encoding/binary"
	"fmt"
	"testing"

	"golang.org/x/image/font/sfnt"

	"github.com/grimhold/oubliette/engine/renderer"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

// fakeReader serves archive reads from an in-memory map keyed by
// "dir/name" and counts reads so tests can assert re-reads.
type fakeReader struct {
	files map[string][]byte
	reads map[string]int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		files: make(map[string][]byte),
		reads: make(map[string]int),
	}
}

func (r *fakeReader) put(dir, name string, raw []byte) {
	r.files[dir+"/"+name] = raw
}

func (r *fakeReader) ReadDataFile(dir, name string) ([]byte, error) {
	key := dir + "/" + name
	raw, ok := r.files[key]
	if !ok {
		return nil, fmt.Errorf("no such file '%s'", key)
	}
	r.reads[key]++
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// fakeBackend records every resource construction and the bytes it was
// handed, standing in for a real rendering target.
type fakeBackend struct {
	generation    uint64
	sheetData     map[string][]byte
	bitmapData    map[string][]byte
	sheetCreates  int
	cursorCreates int
	drawn         []string
	failSheets    bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		generation: 1,
		sheetData:  make(map[string][]byte),
		bitmapData: make(map[string][]byte),
	}
}

func (b *fakeBackend) SheetCreate(sheet *metadata.Sheet, dat []byte) error {
	if b.failSheets {
		return fmt.Errorf("decode rejected")
	}
	b.sheetCreates++
	b.sheetData[sheet.Name] = dat
	sheet.InternalData = dat
	return nil
}

func (b *fakeBackend) BitmapCreate(bitmap *metadata.RawBitmap, pixels []byte) error {
	b.bitmapData[bitmap.Name] = pixels
	bitmap.InternalData = pixels
	return nil
}

func (b *fakeBackend) CursorCreate(cursor *metadata.Cursor) error {
	b.cursorCreates++
	cursor.InternalData = cursor.Sheet.Frames[cursor.Index]
	return nil
}

func (b *fakeBackend) SheetFrameDraw(sheet *metadata.Sheet, frame, x, y int) error {
	b.drawn = append(b.drawn, fmt.Sprintf("%s[%d]@%d,%d", sheet.Name, frame, x, y))
	return nil
}

func (b *fakeBackend) OutlineTextDraw(font *sfnt.Font, sizePx, x, y int, text string) error {
	b.drawn = append(b.drawn, "outline:"+text)
	return nil
}

func (b *fakeBackend) FntTextDraw(data *metadata.FntFontData, x, y int, text string) error {
	b.drawn = append(b.drawn, "fnt:"+text)
	return nil
}

func (b *fakeBackend) TargetGeneration() uint64 {
	return b.generation
}

// fakeProjector maps one tile to a 32x32 square grid.
type fakeProjector struct{}

func (fakeProjector) WorldToScreen(tileX, tileY int) (float64, float64) {
	return float64(tileX) * 32, float64(tileY) * 32
}

// greyRampPalette returns a raw palette file whose entry i is the 6-bit
// grey i>>2.
func greyRampPalette() []byte {
	raw := make([]byte, metadata.PaletteEntries*3)
	for i := 0; i < metadata.PaletteEntries; i++ {
		v := byte(i >> 2)
		raw[i*3] = v
		raw[i*3+1] = v
		raw[i*3+2] = v
	}
	return raw
}

// spriteTable builds a .tab index of n frames sized w x h.
func spriteTable(n int, w, h byte) []byte {
	tab := make([]byte, n*6)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(tab[i*6:], uint32(i*64))
		tab[i*6+4] = w
		tab[i*6+5] = h
	}
	return tab
}

func startStream(starts ...int32) []byte {
	raw := make([]byte, len(starts)*4)
	for i, s := range starts {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(s))
	}
	return raw
}

func frameStream(frames ...metadata.AnimFrame) []byte {
	raw := make([]byte, len(frames)*12)
	for i, f := range frames {
		rec := raw[i*12:]
		binary.LittleEndian.PutUint16(rec, f.Sprite)
		binary.LittleEndian.PutUint16(rec[2:], f.FirstElement)
		binary.LittleEndian.PutUint32(rec[4:], uint32(f.Next))
		binary.LittleEndian.PutUint16(rec[8:], uint16(f.X))
		binary.LittleEndian.PutUint16(rec[10:], uint16(f.Y))
	}
	return raw
}

// chainFrames builds n frames linked 0 -> 1 -> ... -> n-1 -> 0.
func chainFrames(n int) []metadata.AnimFrame {
	frames := make([]metadata.AnimFrame, n)
	for i := range frames {
		frames[i] = metadata.AnimFrame{Sprite: uint16(i), Next: int32((i + 1) % n)}
	}
	return frames
}

type rig struct {
	reader   *fakeReader
	backend  *fakeBackend
	registry *ReloadRegistry
	renderer *renderer.Renderer
	palettes *PaletteSystem
	sheets   *SheetSystem
	bitmaps  *RawBitmapSystem
}

func newRig(t *testing.T) *rig {
	t.Helper()

	reader := newFakeReader()
	reader.put("Data", "MAIN.PAL", greyRampPalette())

	backend := newFakeBackend()
	registry := NewReloadRegistry()
	r := renderer.New(backend)

	palettes, err := NewPaletteSystem(&PaletteSystemConfig{
		DefaultDir:  "Data",
		DefaultName: "MAIN.PAL",
	}, reader, registry)
	if err != nil {
		t.Fatalf("NewPaletteSystem: %v", err)
	}
	sheets, err := NewSheetSystem(&SheetSystemConfig{DefaultDir: "Data"}, reader, r, palettes, registry)
	if err != nil {
		t.Fatalf("NewSheetSystem: %v", err)
	}
	bitmaps, err := NewRawBitmapSystem(reader, r, palettes, registry)
	if err != nil {
		t.Fatalf("NewRawBitmapSystem: %v", err)
	}
	return &rig{
		reader:   reader,
		backend:  backend,
		registry: registry,
		renderer: r,
		palettes: palettes,
		sheets:   sheets,
		bitmaps:  bitmaps,
	}
}

// putSheet registers a .tab/.dat pair of n frames under Data/name.
func (r *rig) putSheet(name string, n int, w, h byte) {
	r.reader.put("Data", name+".tab", spriteTable(n, w, h))
	r.reader.put("Data", name+".dat", []byte(name+"-pixels"))
}
