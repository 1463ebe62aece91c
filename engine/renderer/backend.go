package renderer

import (
	"golang.org/x/image/font/sfnt"

	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

// Backend is the rendering-target collaborator. It owns the opaque target
// and decodes raw asset bytes into target-bound representations. The core
// never issues drawing or decoding work itself; it only orchestrates when
// and with what parameters backend resources are constructed.
type Backend interface {
	// SheetCreate decodes a sprite atlas's .dat blob against the current
	// target and stores the handle in sheet.InternalData.
	SheetCreate(sheet *metadata.Sheet, dat []byte) error
	// BitmapCreate decodes a full-frame indexed bitmap against the current
	// target and stores the handle in bitmap.InternalData.
	BitmapCreate(bitmap *metadata.RawBitmap, pixels []byte) error
	// CursorCreate cuts a cursor from one frame of its sheet.
	CursorCreate(cursor *metadata.Cursor) error
	// SheetFrameDraw blits one atlas frame at the given pixel position.
	SheetFrameDraw(sheet *metadata.Sheet, frame, x, y int) error
	// OutlineTextDraw rasterizes text through a scalable outline font.
	OutlineTextDraw(font *sfnt.Font, sizePx, x, y int, text string) error
	// FntTextDraw renders text through an imported .fnt bitmap font. The
	// backend resolves and decodes the page images itself.
	FntTextDraw(data *metadata.FntFontData, x, y int, text string) error
	// TargetGeneration increments every time the target is recreated.
	TargetGeneration() uint64
}

// Renderer wraps the active backend so that all systems observe a target
// swap through one indirection.
type Renderer struct {
	backend Backend
}

func New(backend Backend) *Renderer {
	return &Renderer{backend: backend}
}

// SetBackend swaps the rendering target wholesale. The reload registry is
// expected to replay every live recipe right after.
func (r *Renderer) SetBackend(backend Backend) {
	r.backend = backend
}

func (r *Renderer) SheetCreate(sheet *metadata.Sheet, dat []byte) error {
	if err := r.backend.SheetCreate(sheet, dat); err != nil {
		return err
	}
	sheet.Generation = r.backend.TargetGeneration()
	return nil
}

func (r *Renderer) BitmapCreate(bitmap *metadata.RawBitmap, pixels []byte) error {
	if err := r.backend.BitmapCreate(bitmap, pixels); err != nil {
		return err
	}
	bitmap.Generation = r.backend.TargetGeneration()
	return nil
}

func (r *Renderer) CursorCreate(cursor *metadata.Cursor) error {
	return r.backend.CursorCreate(cursor)
}

func (r *Renderer) SheetFrameDraw(sheet *metadata.Sheet, frame, x, y int) error {
	return r.backend.SheetFrameDraw(sheet, frame, x, y)
}

func (r *Renderer) OutlineTextDraw(font *sfnt.Font, sizePx, x, y int, text string) error {
	return r.backend.OutlineTextDraw(font, sizePx, x, y, text)
}

func (r *Renderer) FntTextDraw(data *metadata.FntFontData, x, y int, text string) error {
	return r.backend.FntTextDraw(data, x, y, text)
}

func (r *Renderer) TargetGeneration() uint64 {
	return r.backend.TargetGeneration()
}
