package metadata

import (
	"encoding/binary"
	"testing"
)

func TestParseSpriteTable(t *testing.T) {
	tab := make([]byte, 12)
	binary.LittleEndian.PutUint32(tab, 0x1234)
	tab[4] = 16
	tab[5] = 20
	binary.LittleEndian.PutUint32(tab[6:], 0x5678)

	frames, err := ParseSpriteTable(tab)
	if err != nil {
		t.Fatalf("ParseSpriteTable: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("parsed %d frames, want 2", len(frames))
	}
	if frames[0].Offset != 0x1234 || frames[0].Width != 16 || frames[0].Height != 20 {
		t.Fatalf("frame 0 = %+v", frames[0])
	}
	if frames[1].Offset != 0x5678 || frames[1].Width != 0 {
		t.Fatalf("frame 1 = %+v", frames[1])
	}
}

func TestParseSpriteTableRejectsRaggedInput(t *testing.T) {
	if _, err := ParseSpriteTable(make([]byte, 7)); err == nil {
		t.Fatal("a ragged sprite table must be rejected")
	}
}

func TestHasFrame(t *testing.T) {
	s := &Sheet{Frames: []SpriteFrame{
		{Width: 8, Height: 8},
		{Width: 0, Height: 8},
	}}
	if !s.HasFrame(0) {
		t.Fatal("frame 0 carries pixels")
	}
	if s.HasFrame(1) {
		t.Fatal("a zero-width frame must not count as present")
	}
	if s.HasFrame(-1) || s.HasFrame(2) {
		t.Fatal("out-of-range indexes must not count as present")
	}
}

func TestFontProxyDelegation(t *testing.T) {
	font := NewFont(stubFace{width: 40, height: 12})
	if font.Kind() != FONT_KIND_BITMAP {
		t.Fatal("the proxy must delegate Kind")
	}
	if font.TextWidth("abcd") != 40 || font.TextHeight() != 12 {
		t.Fatal("the proxy must delegate measurements")
	}

	font.SetFace(stubFace{kind: FONT_KIND_OUTLINE, width: 44, height: 16})
	if font.Kind() != FONT_KIND_OUTLINE || font.TextWidth("abcd") != 44 {
		t.Fatal("swapping the delegate must change behavior through the same handle")
	}
}

type stubFace struct {
	kind   FontKind
	width  int
	height int
}

func (f stubFace) Kind() FontKind            { return f.kind }
func (f stubFace) TextWidth(text string) int { return f.width }
func (f stubFace) TextHeight() int           { return f.height }
func (f stubFace) Draw(x, y int, text string) error {
	return nil
}
