package systems

import (
	"os"
	"path/filepath"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/language"

	"github.com/grimhold/oubliette/engine/archive"
	"github.com/grimhold/oubliette/engine/config"
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

type FontSystemConfig struct {
	/** @brief Sheet whose glyphs are symbolic (the money bar), always
	rendered as bitmap glyphs. */
	MoneyFontSheet string
	/** @brief Pixel size outline fonts render at. */
	OutlineSizePx int
}

type outlineCacheKey struct {
	lang  string
	sheet metadata.Token
}

type FontSystem struct {
	Config *FontSystemConfig

	cfg       *config.Config
	overrides *archive.OverrideIndex
	renderer  *renderer.Renderer
	sheets    *SheetSystem
	registry  *ReloadRegistry

	language language.Tag
	// Parsed outline fonts keyed by language tag.
	outlineFonts map[string]*sfnt.Font
	// Outline faces keyed by (language, sheet), each with its own recipe.
	outlineFaces map[outlineCacheKey]*outlineFace
	// Imported .fnt override fonts keyed by language tag.
	fntFonts map[string]*metadata.FntFontData
}

func NewFontSystem(fsc *FontSystemConfig, cfg *config.Config, overrides *archive.OverrideIndex, r *renderer.Renderer, sheets *SheetSystem, registry *ReloadRegistry) (*FontSystem, error) {
	if fsc.MoneyFontSheet == "" {
		fsc.MoneyFontSheet = metadata.MoneyFontSheetName
	}
	if fsc.OutlineSizePx == 0 {
		fsc.OutlineSizePx = 16
	}
	fs := &FontSystem{
		Config:       fsc,
		cfg:          cfg,
		overrides:    overrides,
		renderer:     r,
		sheets:       sheets,
		registry:     registry,
		language:     cfg.ActiveLanguage(),
		outlineFonts: make(map[string]*sfnt.Font),
		outlineFaces: make(map[outlineCacheKey]*outlineFace),
		fntFonts:     make(map[string]*metadata.FntFontData),
	}
	fs.loadOutlineFonts()
	return fs, nil
}

// loadOutlineFonts parses every configured outline font. Failures are
// soft: the language falls back to bitmap glyphs. When the active
// language has no usable entry, candidate files under the data dir are
// probed and a hit is written back to the configuration once.
func (fs *FontSystem) loadOutlineFonts() {
	for lang, path := range fs.cfg.OutlineFonts {
		f, err := fs.parseOutlineFont(path)
		if err != nil {
			core.LogWarn("outline font for '%s' unusable: %s", lang, err.Error())
			continue
		}
		fs.outlineFonts[lang] = f
	}

	active := fs.language.String()
	if fs.outlineFonts[active] != nil {
		return
	}
	candidates := []string{
		filepath.Join(fs.cfg.DataDir, "fonts", active+".ttf"),
		filepath.Join(fs.cfg.DataDir, "fonts", "default.ttf"),
	}
	for _, candidate := range candidates {
		f, err := fs.parseOutlineFont(candidate)
		if err != nil {
			continue
		}
		fs.outlineFonts[active] = f
		fs.cfg.OutlineFonts[active] = candidate
		if err := fs.cfg.Save(); err != nil {
			core.LogWarn("failed to persist discovered outline font '%s': %s", candidate, err.Error())
		} else {
			core.LogInfo("discovered outline font '%s' for language '%s'", candidate, active)
		}
		return
	}
}

func (fs *FontSystem) parseOutlineFont(path string) (*sfnt.Font, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(raw)
}

// LoadFont wraps the chosen font implementation for the given glyph sheet
// behind a stable proxy. Later language changes swap the delegate in
// place; callers never re-fetch.
func (fs *FontSystem) LoadFont(sheet *metadata.Sheet, xSep, ySep int) (*metadata.Font, error) {
	face, err := fs.buildFace(sheet, xSep, ySep)
	if err != nil {
		return nil, err
	}
	font := metadata.NewFont(face)
	core.MetricsCacheMiss("font")

	// On a target change the delegate is rebuilt strictly after its
	// dependent sheet.
	fs.registry.Record(&Recipe{
		Token:     font.Token,
		Proxy:     font,
		Priority:  ReloadLast,
		BuildFace: func() (metadata.FontFace, error) { return fs.buildFace(sheet, xSep, ySep) },
		Rebuild: func() error {
			core.MetricsReload("font")
			fresh, err := fs.buildFace(sheet, xSep, ySep)
			if err != nil {
				return err
			}
			font.SetFace(fresh)
			return nil
		},
	})
	return font, nil
}

// LoadFontSheet resolves the sheet arguments through the sheet cache
// first, then behaves like LoadFont.
func (fs *FontSystem) LoadFontSheet(dir, name string, complex bool, pal *metadata.Palette, xSep, ySep int) (*metadata.Font, error) {
	sheet, err := fs.sheets.LoadSpriteTable(dir, name, complex, pal)
	if err != nil {
		return nil, err
	}
	return fs.LoadFont(sheet, xSep, ySep)
}

// buildFace picks the concrete implementation for the current language.
// Sheets without a recognizable uppercase glyph, and the money-bar sheet,
// are symbolic and always render as bitmap glyphs.
func (fs *FontSystem) buildFace(sheet *metadata.Sheet, xSep, ySep int) (metadata.FontFace, error) {
	bitmap := &bitmapFace{renderer: fs.renderer, sheet: sheet, xSep: xSep, ySep: ySep}
	if !sheet.HasFrame(metadata.UppercaseProbeGlyph) || sheet.Name == fs.Config.MoneyFontSheet {
		return bitmap, nil
	}

	lang := fs.language.String()
	if data := fs.fntFont(lang); data != nil {
		return &fntFace{renderer: fs.renderer, data: data}, nil
	}
	if outline := fs.outlineFonts[lang]; outline != nil {
		return fs.outlineFace(lang, sheet, outline), nil
	}
	return bitmap, nil
}

// outlineFace returns the cached face for (language, sheet), creating it
// and recording its recipe on first use.
func (fs *FontSystem) outlineFace(lang string, sheet *metadata.Sheet, font *sfnt.Font) *outlineFace {
	key := outlineCacheKey{lang: lang, sheet: sheet.Token}
	if face, ok := fs.outlineFaces[key]; ok {
		core.MetricsCacheHit("outline-face")
		return face
	}
	core.MetricsCacheMiss("outline-face")

	face := &outlineFace{
		renderer: fs.renderer,
		font:     font,
		sizePx:   fs.Config.OutlineSizePx,
		token:    metadata.NewToken(),
	}
	fs.outlineFaces[key] = face
	fs.registry.Record(&Recipe{
		Token: face.token,
		Rebuild: func() error {
			face.font = font
			face.sizePx = fs.Config.OutlineSizePx
			return nil
		},
	})
	return face
}

// fntFont imports the override .fnt descriptor for a language. Missing
// or malformed descriptors are soft failures and are never cached, so a
// descriptor dropped into the override folder later is picked up on the
// next query.
func (fs *FontSystem) fntFont(lang string) *metadata.FntFontData {
	if data, ok := fs.fntFonts[lang]; ok {
		return data
	}
	name, ok := fs.overrides.FontOverride(lang)
	if !ok {
		return nil
	}
	desc, err := bmfont.LoadDescriptor(fs.overrides.Path(name))
	if err != nil {
		core.LogWarn("custom font '%s' for language '%s' unusable: %s", name, lang, err.Error())
		return nil
	}

	data := &metadata.FntFontData{
		Face:       desc.Info.Face,
		Size:       desc.Info.Size,
		LineHeight: desc.Common.LineHeight,
		Baseline:   desc.Common.Base,
		Glyphs:     make(map[rune]metadata.FontGlyph, len(desc.Chars)),
		Kernings:   make([]metadata.FontKerning, 0, len(desc.Kerning)),
	}
	for _, p := range desc.Pages {
		data.Pages = append(data.Pages, p.File)
	}
	for _, g := range desc.Chars {
		data.Glyphs[g.ID] = metadata.FontGlyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			Page:      uint8(g.Page),
		}
	}
	for pair, k := range desc.Kerning {
		data.Kernings = append(data.Kernings, metadata.FontKerning{
			Codepoint0: pair.First,
			Codepoint1: pair.Second,
			Amount:     int16(k.Amount),
		})
	}

	fs.fntFonts[lang] = data
	core.LogInfo("imported custom font '%s' (%s) for language '%s'", name, data.Face, lang)
	return data
}

// HasLanguageFont reports whether outline (or override) font data is
// available for a language. When false, callers fall back to bitmap
// glyph rendering.
func (fs *FontSystem) HasLanguageFont(tag language.Tag) bool {
	lang := tag.String()
	return fs.outlineFonts[lang] != nil || fs.fntFont(lang) != nil
}

// Language returns the language fonts are currently resolved for.
func (fs *FontSystem) Language() language.Tag {
	return fs.language
}

// SetLanguage switches the active language and rebuilds every live font
// delegate in place.
func (fs *FontSystem) SetLanguage(tag language.Tag) error {
	if tag == fs.language {
		return nil
	}
	fs.language = tag
	fs.cfg.Language = tag.String()
	return fs.OnLanguageChange()
}

// OnLanguageChange replays the recorded recipe of every proxy resource
// and splices the fresh delegate into the existing handle. The live
// recipe table is swapped out for the duration so recipes recorded by the
// rebuild itself are not tracked for further rebuilds within this pass.
func (fs *FontSystem) OnLanguageChange() error {
	saved := fs.registry.SwapRecipes()
	defer fs.registry.RestoreRecipes(saved)

	for _, rec := range saved {
		if rec.Proxy == nil {
			continue
		}
		face, err := rec.BuildFace()
		if err != nil {
			core.LogWarn("font rebuild failed, keeping previous delegate: %s", err.Error())
			continue
		}
		rec.Proxy.SetFace(face)
	}
	return nil
}

// Release drops a font proxy and its recorded recipe.
func (fs *FontSystem) Release(font *metadata.Font) {
	if font == nil {
		return
	}
	fs.registry.Forget(font.Token)
}
