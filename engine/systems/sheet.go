package systems

import (
	"fmt"

	"github.com/grimhold/oubliette/engine/archive"
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

type SheetSystemConfig struct {
	/** @brief Directory sheets load from when the caller names none. */
	DefaultDir string
}

type SheetSystem struct {
	Config *SheetSystemConfig
	// Loaded sheets keyed by sheet name. The reserved cursor sheet never
	// lands here: it is keyed by a transient palette choice.
	RegisteredSheets map[string]*metadata.Sheet
	// Cursor cache, doubly keyed: sheet identity, then frame index.
	RegisteredCursors map[metadata.Token]map[int]*metadata.Cursor

	archive       archive.Reader
	renderer      *renderer.Renderer
	paletteSystem *PaletteSystem
	registry      *ReloadRegistry
}

func NewSheetSystem(config *SheetSystemConfig, reader archive.Reader, r *renderer.Renderer, ps *PaletteSystem, registry *ReloadRegistry) (*SheetSystem, error) {
	if config.DefaultDir == "" {
		err := fmt.Errorf("func NewSheetSystem - config.DefaultDir must be set")
		core.LogError(err.Error())
		return nil, err
	}
	return &SheetSystem{
		Config:            config,
		RegisteredSheets:  make(map[string]*metadata.Sheet),
		RegisteredCursors: make(map[metadata.Token]map[int]*metadata.Cursor),
		archive:           reader,
		renderer:          r,
		paletteSystem:     ps,
		registry:          registry,
	}, nil
}

// LoadSpriteTable returns the sheet cached under name, loading its
// .tab/.dat pair on first request. The reserved cursor sheet bypasses the
// global cache. A sheet that cannot be decoded aborts the load: the game
// cannot proceed without it.
func (ss *SheetSystem) LoadSpriteTable(dir, name string, complex bool, pal *metadata.Palette) (*metadata.Sheet, error) {
	cacheable := name != metadata.CursorSheetName
	if cacheable {
		if s, ok := ss.RegisteredSheets[name]; ok {
			core.MetricsCacheHit("sheet")
			return s, nil
		}
	}
	core.MetricsCacheMiss("sheet")

	if pal == nil {
		var err error
		pal, err = ss.paletteSystem.LoadDefaultPalette()
		if err != nil {
			return nil, err
		}
	}

	sheet := &metadata.Sheet{
		Name:    name,
		Dir:     dir,
		Complex: complex,
		Palette: pal,
		Token:   metadata.NewToken(),
	}
	if err := ss.buildSheet(sheet); err != nil {
		return nil, err
	}

	if cacheable {
		ss.RegisteredSheets[name] = sheet
	}
	// Sheets have no dependents, so they rebuild at immediate priority
	// from source bytes, never from the stale in-memory atlas.
	ss.registry.Record(&Recipe{
		Token:    sheet.Token,
		Priority: ReloadNow,
		Rebuild: func() error {
			core.MetricsReload("sheet")
			return ss.buildSheet(sheet)
		},
	})
	return sheet, nil
}

// buildSheet (re)reads the .tab/.dat pair and decodes the atlas against
// the current rendering target, mutating the sheet in place.
func (ss *SheetSystem) buildSheet(sheet *metadata.Sheet) error {
	tab, err := ss.archive.ReadDataFile(sheet.Dir, sheet.Name+".tab")
	if err != nil {
		core.LogError("failed to read sprite table for '%s': %s", sheet.Name, err.Error())
		return fmt.Errorf("sheet '%s': %w: %s", sheet.Name, core.ErrAssetCorrupt, err.Error())
	}
	dat, err := ss.archive.ReadDataFile(sheet.Dir, sheet.Name+".dat")
	if err != nil {
		core.LogError("failed to read sprite data for '%s': %s", sheet.Name, err.Error())
		return fmt.Errorf("sheet '%s': %w: %s", sheet.Name, core.ErrAssetCorrupt, err.Error())
	}

	frames, err := metadata.ParseSpriteTable(tab)
	if err != nil {
		core.LogError(err.Error())
		return fmt.Errorf("sheet '%s': %w: %s", sheet.Name, core.ErrAssetCorrupt, err.Error())
	}
	sheet.Frames = frames

	if err := ss.renderer.SheetCreate(sheet, dat); err != nil {
		core.LogError("failed to decode sheet '%s': %s", sheet.Name, err.Error())
		return fmt.Errorf("sheet '%s': %w: %s", sheet.Name, core.ErrAssetCorrupt, err.Error())
	}
	return nil
}

// Cursor returns the cursor cut from the given sheet frame, creating and
// caching it on first request. Cursors are rebuilt only after their
// dependent sheet on a target change.
func (ss *SheetSystem) Cursor(sheet *metadata.Sheet, index int) (*metadata.Cursor, error) {
	bySheet, ok := ss.RegisteredCursors[sheet.Token]
	if !ok {
		bySheet = make(map[int]*metadata.Cursor)
		ss.RegisteredCursors[sheet.Token] = bySheet
	}
	if c, ok := bySheet[index]; ok {
		core.MetricsCacheHit("cursor")
		return c, nil
	}
	core.MetricsCacheMiss("cursor")

	if !sheet.HasFrame(index) {
		err := fmt.Errorf("%w: cursor frame %d is not present in sheet '%s'", core.ErrUsage, index, sheet.Name)
		core.LogError(err.Error())
		return nil, err
	}

	cursor := &metadata.Cursor{
		Sheet: sheet,
		Index: index,
		Token: metadata.NewToken(),
	}
	if err := ss.renderer.CursorCreate(cursor); err != nil {
		core.LogError("failed to create cursor %d from sheet '%s': %s", index, sheet.Name, err.Error())
		return nil, fmt.Errorf("cursor %d of sheet '%s': %w: %s", index, sheet.Name, core.ErrAssetCorrupt, err.Error())
	}

	bySheet[index] = cursor
	ss.registry.Record(&Recipe{
		Token:    cursor.Token,
		Priority: ReloadLast,
		Rebuild: func() error {
			core.MetricsReload("cursor")
			return ss.renderer.CursorCreate(cursor)
		},
	})
	return cursor, nil
}

// Release drops a sheet, its cursors and their recorded recipes.
func (ss *SheetSystem) Release(name string) {
	sheet, ok := ss.RegisteredSheets[name]
	if !ok {
		return
	}
	for _, cursor := range ss.RegisteredCursors[sheet.Token] {
		ss.registry.Forget(cursor.Token)
	}
	delete(ss.RegisteredCursors, sheet.Token)
	ss.registry.Forget(sheet.Token)
	delete(ss.RegisteredSheets, name)
}
