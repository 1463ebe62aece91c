package systems

import (
	"golang.org/x/text/language"

	"github.com/grimhold/oubliette/engine/archive"
	"github.com/grimhold/oubliette/engine/config"
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

// GraphicsSystem owns every resource cache and the reload registry.
// There is no ambient global lookup; all state lives here.
type GraphicsSystem struct {
	cfg       *config.Config
	overrides *archive.OverrideIndex
	registry  *ReloadRegistry
	renderer  *renderer.Renderer

	paletteSystem   *PaletteSystem
	sheetSystem     *SheetSystem
	bitmapSystem    *RawBitmapSystem
	fontSystem      *FontSystem
	animationSystem *AnimationSystem
}

func NewGraphicsSystem(cfg *config.Config, reader archive.Reader, backend renderer.Backend, projector metadata.Projector) (*GraphicsSystem, error) {
	core.MetricsInitialize()
	if !core.EventInitialize() {
		core.LogWarn("event system already initialized")
	}

	overrides, err := archive.NewOverrideIndex(cfg.CustomGraphicsDir, cfg.UseCustomGraphics)
	if err != nil {
		return nil, err
	}
	registry := NewReloadRegistry()
	r := renderer.New(backend)

	ps, err := NewPaletteSystem(&PaletteSystemConfig{
		DefaultDir:  "Data",
		DefaultName: "MAIN.PAL",
	}, reader, registry)
	if err != nil {
		return nil, err
	}
	ss, err := NewSheetSystem(&SheetSystemConfig{
		DefaultDir: "Data",
	}, reader, r, ps, registry)
	if err != nil {
		return nil, err
	}
	bs, err := NewRawBitmapSystem(reader, r, ps, registry)
	if err != nil {
		return nil, err
	}
	fs, err := NewFontSystem(&FontSystemConfig{}, cfg, overrides, r, ss, registry)
	if err != nil {
		return nil, err
	}
	as, err := NewAnimationSystem(&AnimationSystemConfig{
		DefaultDir: "Data",
	}, reader, overrides, ss, registry, projector)
	if err != nil {
		return nil, err
	}

	return &GraphicsSystem{
		cfg:             cfg,
		overrides:       overrides,
		registry:        registry,
		renderer:        r,
		paletteSystem:   ps,
		sheetSystem:     ss,
		bitmapSystem:    bs,
		fontSystem:      fs,
		animationSystem: as,
	}, nil
}

func (gs *GraphicsSystem) Palettes() *PaletteSystem      { return gs.paletteSystem }
func (gs *GraphicsSystem) Sheets() *SheetSystem          { return gs.sheetSystem }
func (gs *GraphicsSystem) Bitmaps() *RawBitmapSystem     { return gs.bitmapSystem }
func (gs *GraphicsSystem) Fonts() *FontSystem            { return gs.fontSystem }
func (gs *GraphicsSystem) Animations() *AnimationSystem  { return gs.animationSystem }
func (gs *GraphicsSystem) Registry() *ReloadRegistry     { return gs.registry }
func (gs *GraphicsSystem) Renderer() *renderer.Renderer  { return gs.renderer }
func (gs *GraphicsSystem) Overrides() *archive.OverrideIndex {
	return gs.overrides
}

// UpdateTarget swaps the rendering target wholesale and replays every
// live recipe against it. Immediate-priority resources rebuild first,
// delegate-swap resources after, so cursors and fonts always see their
// dependent sheet in its rebuilt state.
func (gs *GraphicsSystem) UpdateTarget(backend renderer.Backend) error {
	gs.renderer.SetBackend(backend)
	if err := gs.registry.ReplayTarget(); err != nil {
		core.LogError("target replay failed: %s", err.Error())
		return err
	}

	ctx := core.EventContext{}
	ctx.Data.U32[0] = uint32(gs.renderer.TargetGeneration())
	core.EventFire(core.EVENT_CODE_TARGET_CHANGED, gs, ctx)
	core.LogInfo("rendering target updated, %d recipe(s) live", gs.registry.RecipeCount())
	return nil
}

// SetLanguage switches the active language and rebuilds every live font
// delegate in place. Callers keep their handles.
func (gs *GraphicsSystem) SetLanguage(tag language.Tag) error {
	if err := gs.fontSystem.SetLanguage(tag); err != nil {
		return err
	}
	ctx := core.EventContext{}
	ctx.Data.C[0] = tag.String()
	core.EventFire(core.EVENT_CODE_LANGUAGE_CHANGED, gs, ctx)
	return nil
}

func (gs *GraphicsSystem) Shutdown() error {
	if err := gs.overrides.Close(); err != nil {
		core.LogWarn("override watcher shutdown: %s", err.Error())
	}
	core.EventShutdown()
	return nil
}
