package metadata

import (
	"encoding/binary"
	"fmt"
)

const (
	/** @brief The reserved cursor sheet name. Cursor sheets are keyed by a
	transient palette choice and are therefore never cached globally. */
	CursorSheetName = "Pointer"
	/** @brief The money-bar font sheet. Its glyphs are symbolic, not
	textual, so it always renders as bitmap glyphs. */
	MoneyFontSheetName = "MFont"
	/** @brief Glyph probed to decide whether a sheet carries a real
	uppercase alphabet ('M' at the standard 31-offset encoding). */
	UppercaseProbeGlyph = 46
)

// spriteTableRecordSize is the fixed .tab record: u32 data offset,
// u8 width, u8 height.
const spriteTableRecordSize = 6

/**
 * @brief One entry of a sprite sheet's .tab index.
 */
type SpriteFrame struct {
	Offset uint32
	Width  uint8
	Height uint8
}

/**
 * @brief A tabled sprite atlas bound to a palette and the current
 * rendering target. Reloads mutate the sheet in place so long-lived
 * references stay valid.
 */
type Sheet struct {
	Name    string
	Dir     string
	Complex bool
	Palette *Palette
	Frames  []SpriteFrame
	Token   Token
	/** @brief Target generation the backing data was built against. */
	Generation uint64
	/** @brief Backend-owned handle for the decoded atlas. */
	InternalData interface{}
}

// ParseSpriteTable decodes a .tab index into its fixed-size records.
func ParseSpriteTable(tab []byte) ([]SpriteFrame, error) {
	if len(tab)%spriteTableRecordSize != 0 {
		return nil, fmt.Errorf("sprite table is %d bytes, not a multiple of %d", len(tab), spriteTableRecordSize)
	}
	frames := make([]SpriteFrame, len(tab)/spriteTableRecordSize)
	for i := range frames {
		rec := tab[i*spriteTableRecordSize:]
		frames[i] = SpriteFrame{
			Offset: binary.LittleEndian.Uint32(rec),
			Width:  rec[4],
			Height: rec[5],
		}
	}
	return frames, nil
}

func (s *Sheet) FrameCount() int {
	return len(s.Frames)
}

// HasFrame reports whether frame i exists and carries pixels.
func (s *Sheet) HasFrame(i int) bool {
	if i < 0 || i >= len(s.Frames) {
		return false
	}
	f := s.Frames[i]
	return f.Width > 0 && f.Height > 0
}
