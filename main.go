/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/image/font/sfnt"

	"github.com/grimhold/oubliette/engine/archive"
	"github.com/grimhold/oubliette/engine/config"
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
	"github.com/grimhold/oubliette/engine/systems"
)

// nullBackend is a headless rendering target. It accepts every resource
// and draw call so the loading layer can be exercised without a window.
type nullBackend struct {
	generation uint64
}

func (b *nullBackend) SheetCreate(sheet *metadata.Sheet, dat []byte) error {
	sheet.InternalData = dat
	return nil
}

func (b *nullBackend) BitmapCreate(bitmap *metadata.RawBitmap, pixels []byte) error {
	bitmap.InternalData = pixels
	return nil
}

func (b *nullBackend) CursorCreate(cursor *metadata.Cursor) error {
	cursor.InternalData = cursor.Sheet.Frames[cursor.Index]
	return nil
}

func (b *nullBackend) SheetFrameDraw(sheet *metadata.Sheet, frame, x, y int) error {
	return nil
}

func (b *nullBackend) OutlineTextDraw(font *sfnt.Font, sizePx, x, y int, text string) error {
	return nil
}

func (b *nullBackend) FntTextDraw(data *metadata.FntFontData, x, y int, text string) error {
	return nil
}

func (b *nullBackend) TargetGeneration() uint64 {
	return b.generation
}

// dimetricProjector maps tile coordinates to the classic 2:1 screen grid.
type dimetricProjector struct {
	tileWidth  int
	tileHeight int
}

func (p *dimetricProjector) WorldToScreen(tileX, tileY int) (float64, float64) {
	x := float64(tileX-tileY) * float64(p.tileWidth) / 2
	y := float64(tileX+tileY) * float64(p.tileHeight) / 2
	return x, y
}

func main() {
	cfg, err := config.Load("oubliette.toml")
	if err != nil {
		panic(err)
	}
	core.SetLogLevel(cfg.LogLevel)

	backend := &nullBackend{generation: 1}
	gs, err := systems.NewGraphicsSystem(cfg, archive.NewDirReader(cfg.DataDir), backend, &dimetricProjector{tileWidth: 64, tileHeight: 32})
	if err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = gs.Shutdown()
		os.Exit(0)
	}()

	core.EventRegister(core.EVENT_CODE_TARGET_CHANGED, nil,
		func(code core.SystemEventCode, sender, listenerInst interface{}, data core.EventContext) bool {
			core.LogInfo("rendering target changed, now at generation %d", data.Data.U32[0])
			return false
		})
	core.EventRegister(core.EVENT_CODE_LANGUAGE_CHANGED, nil,
		func(code core.SystemEventCode, sender, listenerInst interface{}, data core.EventContext) bool {
			core.LogInfo("language changed to '%s', font delegates rebuilt", data.Data.C[0])
			return false
		})

	// Exercise the caches against whatever data is unpacked; a partial
	// install just logs what is missing.
	if _, err := gs.Palettes().LoadDefaultPalette(); err != nil {
		core.LogWarn("default palette unavailable: %s", err.Error())
	}
	if sheet, err := gs.Sheets().LoadSpriteTable("Data", "Gui2-0", true, nil); err != nil {
		core.LogWarn("gui sheet unavailable: %s", err.Error())
	} else if _, err := gs.Fonts().LoadFont(sheet, 1, 2); err != nil {
		core.LogWarn("gui font unavailable: %s", err.Error())
	}
	if _, err := gs.Animations().LoadAnimations("Data", "Creature"); err != nil {
		core.LogWarn("creature animations unavailable: %s", err.Error())
	}

	// Simulate one target recreation to replay every recorded recipe.
	if err := gs.UpdateTarget(&nullBackend{generation: 2}); err != nil {
		core.LogWarn("target replay incomplete: %s", err.Error())
	}

	for _, kind := range []string{"palette", "sheet", "font", "animation"} {
		hits, misses := core.MetricsCache(kind)
		core.LogInfo("%s cache: %d hit(s), %d miss(es), %d reload(s)", kind, hits, misses, core.MetricsReloadCount(kind))
	}

	if err := gs.Shutdown(); err != nil {
		panic(err)
	}
}
