package systems

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/grimhold/oubliette/engine/archive"
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

type AnimationSystemConfig struct {
	/** @brief Directory animation sets load from by default. */
	DefaultDir string
}

// Companion stream suffixes of an animation set. All four must load; the
// original assets are assumed always present and well formed.
const (
	animSheetSuffix   = "Spr-0"
	animStartSuffix   = "Start-1.ani"
	animFrameSuffix   = "Fra-1.ani"
	animListSuffix    = "List-1.ani"
	animElementSuffix = "Ele-1.ani"
)

type lengthKey struct {
	set metadata.Token
	id  metadata.AnimID
}

type AnimationSystem struct {
	Config *AnimationSystemConfig
	// Loaded sets keyed by prefix.
	RegisteredSets map[string]*metadata.AnimationSet

	lengths         map[lengthKey]int
	lengthOverrides map[lengthKey]int

	archive   archive.Reader
	overrides *archive.OverrideIndex
	sheets    *SheetSystem
	registry  *ReloadRegistry
	projector metadata.Projector
}

func NewAnimationSystem(config *AnimationSystemConfig, reader archive.Reader, overrides *archive.OverrideIndex, sheets *SheetSystem, registry *ReloadRegistry, projector metadata.Projector) (*AnimationSystem, error) {
	if config.DefaultDir == "" {
		err := fmt.Errorf("func NewAnimationSystem - config.DefaultDir must be set")
		core.LogError(err.Error())
		return nil, err
	}
	return &AnimationSystem{
		Config:          config,
		RegisteredSets:  make(map[string]*metadata.AnimationSet),
		lengths:         make(map[lengthKey]int),
		lengthOverrides: make(map[lengthKey]int),
		archive:         reader,
		overrides:       overrides,
		sheets:          sheets,
		registry:        registry,
		projector:       projector,
	}, nil
}

// LoadAnimations returns the animation set cached under prefix, loading
// the sprite sheet and the four companion streams on first request. A
// failure of the combined load aborts; custom overlay files merge
// additively and fail soft.
func (as *AnimationSystem) LoadAnimations(dir, prefix string) (*metadata.AnimationSet, error) {
	if set, ok := as.RegisteredSets[prefix]; ok {
		core.MetricsCacheHit("animation")
		return set, nil
	}
	core.MetricsCacheMiss("animation")

	sheet, err := as.sheets.LoadSpriteTable(dir, prefix+animSheetSuffix, true, nil)
	if err != nil {
		return nil, err
	}

	set := &metadata.AnimationSet{
		Prefix: prefix,
		Sheet:  sheet,
		Token:  metadata.NewToken(),
	}
	if err := as.buildTables(set, dir); err != nil {
		return nil, err
	}

	as.RegisteredSets[prefix] = set
	as.registry.Record(&Recipe{
		Token:   set.Token,
		Rebuild: func() error { return as.buildTables(set, dir) },
	})
	return set, nil
}

// buildTables (re)reads and decodes the companion streams, then merges
// any configured overlays, mutating the set in place.
func (as *AnimationSystem) buildTables(set *metadata.AnimationSet, dir string) error {
	streams := make([][]byte, 4)
	for i, suffix := range []string{animStartSuffix, animFrameSuffix, animListSuffix, animElementSuffix} {
		raw, err := as.archive.ReadDataFile(dir, set.Prefix+suffix)
		if err != nil {
			core.LogError("failed to read animation stream '%s%s': %s", set.Prefix, suffix, err.Error())
			return fmt.Errorf("animation set '%s': %w: %s", set.Prefix, core.ErrAssetCorrupt, err.Error())
		}
		streams[i] = raw
	}

	starts, frames, lists, elements, err := metadata.ParseAnimationTables(streams[0], streams[1], streams[2], streams[3])
	if err != nil {
		core.LogError("failed to decode animation set '%s': %s", set.Prefix, err.Error())
		return fmt.Errorf("animation set '%s': %w: %s", set.Prefix, core.ErrAssetCorrupt, err.Error())
	}
	set.Starts = starts
	set.Frames = frames
	set.Lists = lists
	set.Elements = elements

	as.applyOverlays(set)
	return nil
}

type overlayFrame struct {
	Sprite uint16 `toml:"sprite"`
	X      int16  `toml:"x"`
	Y      int16  `toml:"y"`
}

type overlayAnimation struct {
	ID     int32          `toml:"id"`
	Frames []overlayFrame `toml:"frames"`
}

type animationOverlay struct {
	Animations []overlayAnimation `toml:"animation"`
}

// applyOverlays merges every mapped override file into the set. Later
// files can add or override entries, never wholesale-replace; any broken
// file is logged and skipped.
func (as *AnimationSystem) applyOverlays(set *metadata.AnimationSet) {
	for _, name := range as.overrides.AnimationOverlays(set.Prefix) {
		raw, err := as.overrides.ReadFile(name)
		if err != nil {
			core.LogError("failed to read custom animation file '%s': %s", name, err.Error())
			continue
		}
		var overlay animationOverlay
		if err := toml.Unmarshal(raw, &overlay); err != nil {
			core.LogWarn("malformed custom animation file '%s': %s", name, err.Error())
			continue
		}

		merged := 0
		for _, anim := range overlay.Animations {
			frames := make([]metadata.AnimFrame, len(anim.Frames))
			for i, f := range anim.Frames {
				frames[i] = metadata.AnimFrame{Sprite: f.Sprite, X: f.X, Y: f.Y}
			}
			if err := set.AddAnimation(metadata.AnimID(anim.ID), frames); err != nil {
				core.LogWarn("custom animation %d in '%s' skipped: %s", anim.ID, name, err.Error())
				continue
			}
			// Stale memoized lengths would misrepresent the new chain.
			delete(as.lengths, lengthKey{set: set.Token, id: metadata.AnimID(anim.ID)})
			merged++
		}
		core.LogInfo("merged %d custom animation(s) from '%s' into set '%s'", merged, name, set.Prefix)
	}
}

// Release drops a set and its recorded recipe. Memoized lengths and
// overrides for the set go with it.
func (as *AnimationSystem) Release(prefix string) {
	set, ok := as.RegisteredSets[prefix]
	if !ok {
		return
	}
	for key := range as.lengths {
		if key.set == set.Token {
			delete(as.lengths, key)
		}
	}
	for key := range as.lengthOverrides {
		if key.set == set.Token {
			delete(as.lengthOverrides, key)
		}
	}
	as.registry.Forget(set.Token)
	delete(as.RegisteredSets, prefix)
}
