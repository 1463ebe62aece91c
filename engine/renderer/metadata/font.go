package metadata

type FontKind int

const (
	/** @brief Fixed-resolution glyphs cut from a sprite sheet. */
	FONT_KIND_BITMAP FontKind = iota
	/** @brief Scalable outline glyphs rendered from font outlines. */
	FONT_KIND_OUTLINE
)

/** @brief One glyph of an imported .fnt bitmap font. */
type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	Page      uint8
}

/** @brief A kerning pair of an imported .fnt bitmap font. */
type FontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
	Amount     int16
}

/**
 * @brief Data imported from a .fnt descriptor supplied by the custom
 * graphics override folder.
 */
type FntFontData struct {
	Face       string
	Size       int
	LineHeight int
	Baseline   int
	// Page image files, relative to the override folder.
	Pages    []string
	Glyphs   map[rune]FontGlyph
	Kernings []FontKerning
}

// FontFace is the capability surface of a concrete font implementation.
type FontFace interface {
	Kind() FontKind
	TextWidth(text string) int
	TextHeight() int
	Draw(x, y int, text string) error
}

/**
 * @brief The stable font handle callers hold. The internal delegate can
 * be swapped when the active language changes without invalidating
 * caller-held references; only the face pointer moves.
 */
type Font struct {
	Token Token

	face FontFace
}

func NewFont(face FontFace) *Font {
	return &Font{
		Token: NewToken(),
		face:  face,
	}
}

// Face returns the current delegate.
func (f *Font) Face() FontFace {
	return f.face
}

// SetFace splices a fresh delegate into the proxy. Intended for the font
// system's language rebuild; callers never need it.
func (f *Font) SetFace(face FontFace) {
	f.face = face
}

func (f *Font) Kind() FontKind {
	return f.face.Kind()
}

func (f *Font) TextWidth(text string) int {
	return f.face.TextWidth(text)
}

func (f *Font) TextHeight() int {
	return f.face.TextHeight()
}

func (f *Font) Draw(x, y int, text string) error {
	return f.face.Draw(x, y, text)
}
