package systems

import (
	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

// reloadFunc replays a load recipe. It must be idempotent and rebuild the
// resource in place so caller-held references stay valid.
type reloadFunc func() error

// ReloadPriority places a recipe in the target-replay schedule.
type ReloadPriority int

const (
	// ReloadNone excludes the recipe from target replay entirely; the
	// resource is not target-bound (palettes, animation tables).
	ReloadNone ReloadPriority = iota
	// ReloadNow rebuilds first: resources with no dependents (sheets,
	// raw bitmaps).
	ReloadNow
	// ReloadLast rebuilds strictly after every ReloadNow recipe:
	// resources built from sheets (cursors, fonts).
	ReloadLast
)

/**
 * @brief A recorded load recipe: enough to reconstruct the resource
 * identically later. Priority schedules the recipe on target replay.
 * Proxy and BuildFace are set only for resources with a swappable
 * delegate (fonts); those are rebuilt on language changes.
 */
type Recipe struct {
	Token    metadata.Token
	Rebuild  reloadFunc
	Priority ReloadPriority
	// Non-nil when the resource is a stable proxy whose delegate can be
	// swapped in place.
	Proxy     *metadata.Font
	BuildFace func() (metadata.FontFace, error)
}

/**
 * @brief ReloadRegistry records, for every live resource, the recipe that
 * produced it. The recipe store is the single source of truth: target
 * changes replay the recorded rebuilds, ReloadNow recipes (sheets, raw
 * bitmaps: no dependents) strictly before ReloadLast ones (cursors,
 * fonts: built from sheets). Entries are keyed by the resource's identity
 * token and removed explicitly on disposal, so the registry never keeps a
 * dead resource alive.
 */
type ReloadRegistry struct {
	recipes map[metadata.Token]*Recipe
}

func NewReloadRegistry() *ReloadRegistry {
	return &ReloadRegistry{
		recipes: make(map[metadata.Token]*Recipe),
	}
}

// Record remembers the load recipe for a live resource.
func (rr *ReloadRegistry) Record(rec *Recipe) {
	rr.recipes[rec.Token] = rec
}

// Forget drops the recipe of a disposed resource.
func (rr *ReloadRegistry) Forget(token metadata.Token) {
	delete(rr.recipes, token)
}

// ReplayTarget rebuilds every target-bound resource from source bytes,
// immediate-priority recipes first. A failed replay is the same fatal
// condition as the original load failing.
func (rr *ReloadRegistry) ReplayTarget() error {
	for _, priority := range []ReloadPriority{ReloadNow, ReloadLast} {
		for _, rec := range rr.recipes {
			if rec.Priority != priority {
				continue
			}
			if err := rec.Rebuild(); err != nil {
				core.LogError("target reload failed: %s", err.Error())
				return err
			}
		}
	}
	return nil
}

// SwapRecipes installs a fresh empty recipe table and returns the live
// one. Recipes recorded while the fresh table is installed are discarded
// on Restore; this keeps bulk rebuilds re-entrant-safe.
func (rr *ReloadRegistry) SwapRecipes() map[metadata.Token]*Recipe {
	saved := rr.recipes
	rr.recipes = make(map[metadata.Token]*Recipe)
	return saved
}

// RestoreRecipes reinstates the table saved by SwapRecipes.
func (rr *ReloadRegistry) RestoreRecipes(saved map[metadata.Token]*Recipe) {
	rr.recipes = saved
}

// Proxies returns the recipes of every live swappable-delegate resource.
func (rr *ReloadRegistry) Proxies() []*Recipe {
	out := make([]*Recipe, 0, len(rr.recipes))
	for _, rec := range rr.recipes {
		if rec.Proxy != nil {
			out = append(out, rec)
		}
	}
	return out
}

func (rr *ReloadRegistry) RecipeCount() int {
	return len(rr.recipes)
}
