package systems

import (
	"fmt"

	"github.com/grimhold/oubliette/engine/archive"
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

const (
	defaultRawWidth  = 640
	defaultRawHeight = 480
	defaultRawDir    = "QData"
)

type rawParams struct {
	width           int
	height          int
	dir             string
	palDir          string
	palName         string
	transparentLast bool
}

// RawOption adjusts the defaults of LoadRaw (640x480, dir "QData",
// palette dir = bitmap dir, palette file = name + ".pal").
type RawOption func(*rawParams)

func WithRawSize(width, height int) RawOption {
	return func(p *rawParams) {
		p.width = width
		p.height = height
	}
}

func WithRawDir(dir string) RawOption {
	return func(p *rawParams) {
		p.dir = dir
	}
}

func WithRawPaletteDir(dir string) RawOption {
	return func(p *rawParams) {
		p.palDir = dir
	}
}

func WithRawPalette(name string) RawOption {
	return func(p *rawParams) {
		p.palName = name
	}
}

func WithTransparentLast(transparent bool) RawOption {
	return func(p *rawParams) {
		p.transparentLast = transparent
	}
}

type RawBitmapSystem struct {
	// Loaded bitmaps keyed by base name.
	RegisteredBitmaps map[string]*metadata.RawBitmap

	archive       archive.Reader
	renderer      *renderer.Renderer
	paletteSystem *PaletteSystem
	registry      *ReloadRegistry
}

func NewRawBitmapSystem(reader archive.Reader, r *renderer.Renderer, ps *PaletteSystem, registry *ReloadRegistry) (*RawBitmapSystem, error) {
	return &RawBitmapSystem{
		RegisteredBitmaps: make(map[string]*metadata.RawBitmap),
		archive:           reader,
		renderer:          r,
		paletteSystem:     ps,
		registry:          registry,
	}, nil
}

// LoadRaw returns the full-frame bitmap cached under name, loading
// name + ".raw" and its palette on first request. Trailing bytes beyond
// width*height are truncated; a short or undecodable file aborts the load.
func (bs *RawBitmapSystem) LoadRaw(name string, opts ...RawOption) (*metadata.RawBitmap, error) {
	if b, ok := bs.RegisteredBitmaps[name]; ok {
		core.MetricsCacheHit("bitmap")
		return b, nil
	}
	core.MetricsCacheMiss("bitmap")

	params := &rawParams{
		width:  defaultRawWidth,
		height: defaultRawHeight,
		dir:    defaultRawDir,
	}
	for _, opt := range opts {
		opt(params)
	}
	if params.palDir == "" {
		params.palDir = params.dir
	}
	if params.palName == "" {
		params.palName = name + ".pal"
	}

	pal, err := bs.paletteSystem.LoadPalette(params.palDir, params.palName, params.transparentLast)
	if err != nil {
		return nil, err
	}

	bitmap := &metadata.RawBitmap{
		Name:    name,
		Width:   params.width,
		Height:  params.height,
		Palette: pal,
		Token:   metadata.NewToken(),
	}
	if err := bs.buildBitmap(bitmap, params.dir); err != nil {
		return nil, err
	}

	bs.RegisteredBitmaps[name] = bitmap
	// Raw bitmaps have no dependents; rebuild at immediate priority from
	// freshly re-read archive bytes.
	bs.registry.Record(&Recipe{
		Token:    bitmap.Token,
		Priority: ReloadNow,
		Rebuild: func() error {
			core.MetricsReload("bitmap")
			return bs.buildBitmap(bitmap, params.dir)
		},
	})
	return bitmap, nil
}

func (bs *RawBitmapSystem) buildBitmap(bitmap *metadata.RawBitmap, dir string) error {
	raw, err := bs.archive.ReadDataFile(dir, bitmap.Name+".raw")
	if err != nil {
		core.LogError("failed to read raw bitmap '%s': %s", bitmap.Name, err.Error())
		return fmt.Errorf("bitmap '%s': %w: %s", bitmap.Name, core.ErrAssetCorrupt, err.Error())
	}

	size := bitmap.Width * bitmap.Height
	if len(raw) < size {
		err := fmt.Errorf("raw bitmap '%s' is %d bytes, want %d", bitmap.Name, len(raw), size)
		core.LogError(err.Error())
		return fmt.Errorf("bitmap '%s': %w: %s", bitmap.Name, core.ErrAssetCorrupt, err.Error())
	}
	raw = raw[:size]

	if err := bs.renderer.BitmapCreate(bitmap, raw); err != nil {
		core.LogError("failed to decode raw bitmap '%s': %s", bitmap.Name, err.Error())
		return fmt.Errorf("bitmap '%s': %w: %s", bitmap.Name, core.ErrAssetCorrupt, err.Error())
	}
	return nil
}

// Release drops a bitmap and its recorded recipe.
func (bs *RawBitmapSystem) Release(name string) {
	bitmap, ok := bs.RegisteredBitmaps[name]
	if !ok {
		return
	}
	bs.registry.Forget(bitmap.Token)
	delete(bs.RegisteredBitmaps, name)
}
