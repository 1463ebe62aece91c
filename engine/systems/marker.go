package systems

import (
	"fmt"
	gomath "math"

	"github.com/grimhold/oubliette/engine/core"
	"github.com/grimhold/oubliette/engine/renderer/metadata"
)

/** @brief One anchor of a keyframed marker path. */
type Keyframe struct {
	Frame int
	Pos   metadata.Position
}

// AnimLength returns the number of frames in an animation's chain. The
// chain is circular, so the walk counts frames until it revisits one.
// Results are memoized per (set, id); a declared override wins over the
// walked value.
func (as *AnimationSystem) AnimLength(set *metadata.AnimationSet, id metadata.AnimID) (int, error) {
	if set == nil || !set.ValidAnim(id) {
		return 0, fmt.Errorf("%w: no animation %d in set", core.ErrUsage, id)
	}
	key := lengthKey{set: set.Token, id: id}
	if length, ok := as.lengthOverrides[key]; ok {
		return length, nil
	}
	if length, ok := as.lengths[key]; ok {
		return length, nil
	}

	visited := make(map[int32]struct{})
	cur := set.Starts[id]
	length := 0
	for {
		if _, seen := visited[cur]; seen {
			break
		}
		visited[cur] = struct{}{}
		length++
		cur = set.Frames[cur].Next
	}
	as.lengths[key] = length
	return length, nil
}

// SetAnimLength declares an animation's logical frame count, overriding
// the walked chain length for all later marker math.
func (as *AnimationSystem) SetAnimLength(set *metadata.AnimationSet, id metadata.AnimID, length int) error {
	if set == nil || !set.ValidAnim(id) {
		return fmt.Errorf("%w: no animation %d in set", core.ErrUsage, id)
	}
	if length < 1 {
		return fmt.Errorf("%w: animation length must be positive, got %d", core.ErrUsage, length)
	}
	as.lengthOverrides[lengthKey{set: set.Token, id: id}] = length
	return nil
}

// SetMarker attaches the same screen position to every frame of the
// given animations.
func (as *AnimationSystem) SetMarker(set *metadata.AnimationSet, ids []metadata.AnimID, pos metadata.Position) error {
	x, y := as.resolve(pos)
	return as.applyMarker(set, ids, func(i, length int) (int, int) {
		return x, y
	})
}

// SetMarkerLerp interpolates marker positions from start to end across
// each animation's frames. The per-frame fraction i/(length-1) divides
// in integer arithmetic, so positions advance in coarse steps rather
// than smoothly. Rendering depends on the exact step boundaries; keep
// the arithmetic as is.
func (as *AnimationSystem) SetMarkerLerp(set *metadata.AnimationSet, ids []metadata.AnimID, start, end metadata.Position) error {
	sx, sy := as.resolve(start)
	ex, ey := as.resolve(end)
	return as.applyMarker(set, ids, func(i, length int) (int, int) {
		if length < 2 {
			return sx, sy
		}
		frac := i / (length - 1)
		return sx + (ex-sx)*frac, sy + (ey-sy)*frac
	})
}

// SetMarkerKeyframes interpolates marker positions between anchor
// frames, holding the last anchor's position through any remaining
// frames. Anchors must start at frame 0 or later and ascend strictly.
// Unlike SetMarkerLerp, segments interpolate smoothly; only the final
// pixel value truncates.
func (as *AnimationSystem) SetMarkerKeyframes(set *metadata.AnimationSet, ids []metadata.AnimID, keys []Keyframe) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: at least one keyframe required", core.ErrUsage)
	}
	if keys[0].Frame < 0 {
		return fmt.Errorf("%w: keyframe frame %d is negative", core.ErrUsage, keys[0].Frame)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i].Frame <= keys[i-1].Frame {
			return fmt.Errorf("%w: keyframe frames must ascend, got %d after %d", core.ErrUsage, keys[i].Frame, keys[i-1].Frame)
		}
	}

	type anchor struct {
		frame int
		x, y  int
	}
	anchors := make([]anchor, len(keys))
	for i, k := range keys {
		x, y := as.resolve(k.Pos)
		anchors[i] = anchor{frame: k.Frame, x: x, y: y}
	}

	return as.applyMarker(set, ids, func(i, length int) (int, int) {
		if i <= anchors[0].frame {
			return anchors[0].x, anchors[0].y
		}
		for j := 0; j < len(anchors)-1; j++ {
			a, b := anchors[j], anchors[j+1]
			if i >= a.frame && i < b.frame {
				span := b.frame - a.frame
				step := i - a.frame
				return a.x + (b.x-a.x)*step/span, a.y + (b.y-a.y)*step/span
			}
		}
		last := anchors[len(anchors)-1]
		return last.x, last.y
	})
}

// applyMarker walks each animation's frame chain and writes the marker
// position produced by fn for every frame index.
func (as *AnimationSystem) applyMarker(set *metadata.AnimationSet, ids []metadata.AnimID, fn func(i, length int) (int, int)) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no animations given", core.ErrUsage)
	}
	for _, id := range ids {
		length, err := as.AnimLength(set, id)
		if err != nil {
			return err
		}
		cur := set.Starts[id]
		for i := 0; i < length; i++ {
			frame := &set.Frames[cur]
			frame.MarkerX, frame.MarkerY = fn(i, length)
			cur = frame.Next
		}
	}
	return nil
}

// resolve converts a position to screen pixels. Tile coordinates are
// biased by one before projection to land on the tile's far corner, then
// floored.
func (as *AnimationSystem) resolve(pos metadata.Position) (int, int) {
	if pos.Pixels {
		return pos.X, pos.Y
	}
	px, py := as.projector.WorldToScreen(pos.X+1, pos.Y+1)
	return int(gomath.Floor(px)), int(gomath.Floor(py))
}
