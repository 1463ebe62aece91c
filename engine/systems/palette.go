package systems

import (
	"fmt"

	"github.com/grimhold/oubliette/engine/archive"
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

type PaletteSystemConfig struct {
	/** @brief Directory holding the default palette. */
	DefaultDir string
	/** @brief Name of the default palette file. */
	DefaultName string
}

type PaletteSystem struct {
	Config *PaletteSystemConfig
	// Loaded palettes keyed by file name.
	RegisteredPalettes map[string]*metadata.Palette
	// Transparency flag each palette was built with, to flag stale
	// re-requests.
	loadFlags map[string]bool

	archive  archive.Reader
	registry *ReloadRegistry
}

func NewPaletteSystem(config *PaletteSystemConfig, reader archive.Reader, registry *ReloadRegistry) (*PaletteSystem, error) {
	if config.DefaultDir == "" || config.DefaultName == "" {
		err := fmt.Errorf("func NewPaletteSystem - config must name the default palette")
		core.LogError(err.Error())
		return nil, err
	}
	return &PaletteSystem{
		Config:             config,
		RegisteredPalettes: make(map[string]*metadata.Palette),
		loadFlags:          make(map[string]bool),
		archive:            reader,
		registry:           registry,
	}, nil
}

// LoadPalette returns the palette cached under name, loading and caching
// it on first request. A re-request with a different transparency flag is
// tolerated but flagged; the cached instance wins.
func (ps *PaletteSystem) LoadPalette(dir, name string, transparentLast bool) (*metadata.Palette, error) {
	if p, ok := ps.RegisteredPalettes[name]; ok {
		if ps.loadFlags[name] != transparentLast {
			core.LogWarn("palette '%s' was cached with transparentLast=%t, requested with %t; returning cached instance", name, ps.loadFlags[name], transparentLast)
		}
		core.MetricsCacheHit("palette")
		return p, nil
	}
	core.MetricsCacheMiss("palette")

	p, err := ps.loadPalette(dir, name, transparentLast)
	if err != nil {
		return nil, err
	}

	ps.RegisteredPalettes[name] = p
	ps.loadFlags[name] = transparentLast
	ps.registry.Record(&Recipe{
		Token: p.Token,
		Rebuild: func() error {
			fresh, err := ps.loadPalette(dir, name, transparentLast)
			if err != nil {
				return err
			}
			// In-place so caller-held references stay valid; the identity
			// token survives the rebuild.
			token := p.Token
			*p = *fresh
			p.Token = token
			return nil
		},
	})
	return p, nil
}

func (ps *PaletteSystem) loadPalette(dir, name string, transparentLast bool) (*metadata.Palette, error) {
	raw, err := ps.archive.ReadDataFile(dir, name)
	if err != nil {
		core.LogError("failed to load palette '%s': %s", name, err.Error())
		return nil, fmt.Errorf("palette '%s': %w: %s", name, core.ErrAssetCorrupt, err.Error())
	}
	p, err := metadata.NewPalette(name, raw, transparentLast)
	if err != nil {
		core.LogError(err.Error())
		return nil, fmt.Errorf("palette '%s': %w: %s", name, core.ErrAssetCorrupt, err.Error())
	}
	return p, nil
}

// LoadDefaultPalette resolves the palette used when a caller passes none.
func (ps *PaletteSystem) LoadDefaultPalette() (*metadata.Palette, error) {
	return ps.LoadPalette(ps.Config.DefaultDir, ps.Config.DefaultName, false)
}

// GhostTable returns the greyscale remap derived for a cached palette.
func (ps *PaletteSystem) GhostTable(name string) ([metadata.PaletteEntries]uint8, bool) {
	p, ok := ps.RegisteredPalettes[name]
	if !ok {
		return [metadata.PaletteEntries]uint8{}, false
	}
	return p.GreyscaleRemap(), true
}

// Release drops a palette and its recorded recipe.
func (ps *PaletteSystem) Release(name string) {
	p, ok := ps.RegisteredPalettes[name]
	if !ok {
		return
	}
	ps.registry.Forget(p.Token)
	delete(ps.RegisteredPalettes, name)
	delete(ps.loadFlags, name)
}
