package systems

import (
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/grimhold/oubliette/engine/math"
	"github.com/grimhold/oubliette/engine/renderer"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

// Glyph sheets encode character c at frame index c - 31.
const glyphSheetOffset = 31

// bitmapFace renders fixed-resolution glyphs cut from a sprite sheet.
type bitmapFace struct {
	renderer *renderer.Renderer
	sheet    *metadata.Sheet
	xSep     int
	ySep     int
}

func (f *bitmapFace) Kind() metadata.FontKind {
	return metadata.FONT_KIND_BITMAP
}

func (f *bitmapFace) glyph(r rune) (int, bool) {
	idx := int(r) - glyphSheetOffset
	if !f.sheet.HasFrame(idx) {
		return 0, false
	}
	return idx, true
}

func (f *bitmapFace) TextWidth(text string) int {
	width := 0
	for _, r := range text {
		idx, ok := f.glyph(r)
		if !ok {
			continue
		}
		width += int(f.sheet.Frames[idx].Width) + f.xSep
	}
	return width
}

func (f *bitmapFace) TextHeight() int {
	height := 0
	for _, frame := range f.sheet.Frames {
		height = math.Max(height, int(frame.Height))
	}
	return height + f.ySep
}

func (f *bitmapFace) Draw(x, y int, text string) error {
	for _, r := range text {
		idx, ok := f.glyph(r)
		if !ok {
			continue
		}
		if err := f.renderer.SheetFrameDraw(f.sheet, idx, x, y); err != nil {
			return err
		}
		x += int(f.sheet.Frames[idx].Width) + f.xSep
	}
	return nil
}

// outlineFace renders scalable glyphs through a parsed outline font.
// Instances are cached per (language, sheet) and carry their own token so
// the cache entry has a replayable recipe.
type outlineFace struct {
	renderer *renderer.Renderer
	font     *sfnt.Font
	sizePx   int
	token    metadata.Token

	buf sfnt.Buffer
}

func (f *outlineFace) Kind() metadata.FontKind {
	return metadata.FONT_KIND_OUTLINE
}

func (f *outlineFace) TextWidth(text string) int {
	ppem := fixed.I(f.sizePx)
	width := fixed.Int26_6(0)
	for _, r := range text {
		gi, err := f.font.GlyphIndex(&f.buf, r)
		if err != nil {
			continue
		}
		adv, err := f.font.GlyphAdvance(&f.buf, gi, ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		width += adv
	}
	return width.Ceil()
}

func (f *outlineFace) TextHeight() int {
	m, err := f.font.Metrics(&f.buf, fixed.I(f.sizePx), xfont.HintingNone)
	if err != nil {
		return f.sizePx
	}
	return m.Height.Ceil()
}

func (f *outlineFace) Draw(x, y int, text string) error {
	return f.renderer.OutlineTextDraw(f.font, f.sizePx, x, y, text)
}

// fntFace renders glyphs of a .fnt bitmap font imported from the custom
// graphics override folder.
type fntFace struct {
	renderer *renderer.Renderer
	data     *metadata.FntFontData
}

func (f *fntFace) Kind() metadata.FontKind {
	return metadata.FONT_KIND_BITMAP
}

func (f *fntFace) TextWidth(text string) int {
	width := 0
	prev := rune(-1)
	for _, r := range text {
		g, ok := f.data.Glyphs[r]
		if !ok {
			prev = -1
			continue
		}
		width += int(g.XAdvance)
		for _, k := range f.data.Kernings {
			if k.Codepoint0 == prev && k.Codepoint1 == r {
				width += int(k.Amount)
				break
			}
		}
		prev = r
	}
	return width
}

func (f *fntFace) TextHeight() int {
	return f.data.LineHeight
}

func (f *fntFace) Draw(x, y int, text string) error {
	return f.renderer.FntTextDraw(f.data, x, y, text)
}
