package metadata

import (
	"encoding/binary"
	"fmt"
)

/**
 * @brief Identifier into an animation set's shared animation table.
 */
type AnimID int32

const (
	animStartRecordSize   = 4
	animFrameRecordSize   = 12
	animListRecordSize    = 2
	animElementRecordSize = 8
)

/**
 * @brief One frame of an animation. Frames form a cyclic chain via Next,
 * wrapping to the first frame (or an earlier one) at the loop point.
 */
type AnimFrame struct {
	Sprite       uint16
	FirstElement uint16
	Next         int32
	X            int16
	Y            int16

	// Marker offset applied by the marker interpolation engine.
	MarkerX int
	MarkerY int
}

/**
 * @brief One composited element of a complex frame.
 */
type AnimElement struct {
	Sprite uint16
	X      int16
	Y      int16
	Flags  uint16
}

/**
 * @brief A multi-frame animation set: the sprite sheet the frames index
 * into plus the four companion tables decoded from the .ani streams.
 */
type AnimationSet struct {
	Prefix   string
	Sheet    *Sheet
	Starts   []int32
	Frames   []AnimFrame
	Lists    []uint16
	Elements []AnimElement
	Token    Token
}

// ParseAnimationTables decodes the four companion streams of an animation
// set. All four must decode for the set to be usable.
func ParseAnimationTables(start, fra, list, ele []byte) (starts []int32, frames []AnimFrame, lists []uint16, elements []AnimElement, err error) {
	if len(start)%animStartRecordSize != 0 {
		return nil, nil, nil, nil, fmt.Errorf("start table is %d bytes, not a multiple of %d", len(start), animStartRecordSize)
	}
	if len(fra)%animFrameRecordSize != 0 {
		return nil, nil, nil, nil, fmt.Errorf("frame table is %d bytes, not a multiple of %d", len(fra), animFrameRecordSize)
	}
	if len(list)%animListRecordSize != 0 {
		return nil, nil, nil, nil, fmt.Errorf("list table is %d bytes, not a multiple of %d", len(list), animListRecordSize)
	}
	if len(ele)%animElementRecordSize != 0 {
		return nil, nil, nil, nil, fmt.Errorf("element table is %d bytes, not a multiple of %d", len(ele), animElementRecordSize)
	}

	starts = make([]int32, len(start)/animStartRecordSize)
	for i := range starts {
		starts[i] = int32(binary.LittleEndian.Uint32(start[i*animStartRecordSize:]))
	}

	frames = make([]AnimFrame, len(fra)/animFrameRecordSize)
	for i := range frames {
		rec := fra[i*animFrameRecordSize:]
		frames[i] = AnimFrame{
			Sprite:       binary.LittleEndian.Uint16(rec),
			FirstElement: binary.LittleEndian.Uint16(rec[2:]),
			Next:         int32(binary.LittleEndian.Uint32(rec[4:])),
			X:            int16(binary.LittleEndian.Uint16(rec[8:])),
			Y:            int16(binary.LittleEndian.Uint16(rec[10:])),
		}
	}

	lists = make([]uint16, len(list)/animListRecordSize)
	for i := range lists {
		lists[i] = binary.LittleEndian.Uint16(list[i*animListRecordSize:])
	}

	elements = make([]AnimElement, len(ele)/animElementRecordSize)
	for i := range elements {
		rec := ele[i*animElementRecordSize:]
		elements[i] = AnimElement{
			Sprite: binary.LittleEndian.Uint16(rec),
			X:      int16(binary.LittleEndian.Uint16(rec[2:])),
			Y:      int16(binary.LittleEndian.Uint16(rec[4:])),
			Flags:  binary.LittleEndian.Uint16(rec[6:]),
		}
	}

	// Validate the frame chain so cycle walks cannot run out of bounds.
	for i, f := range frames {
		if f.Next < 0 || int(f.Next) >= len(frames) {
			return nil, nil, nil, nil, fmt.Errorf("frame %d links to out-of-range frame %d", i, f.Next)
		}
	}
	for i, s := range starts {
		if s < 0 || int(s) >= len(frames) {
			return nil, nil, nil, nil, fmt.Errorf("animation %d starts at out-of-range frame %d", i, s)
		}
	}

	return starts, frames, lists, elements, nil
}

func (set *AnimationSet) AnimCount() int {
	return len(set.Starts)
}

// ValidAnim reports whether id indexes a present animation. Gap entries
// created by sparse overlay merges are not valid.
func (set *AnimationSet) ValidAnim(id AnimID) bool {
	return id >= 0 && int(id) < len(set.Starts) && set.Starts[id] >= 0
}

// AddAnimation merges one animation additively into the set: the frames
// are appended, linked into a cycle back to the first appended frame, and
// the start table entry for id is added or overridden. The table grows if
// id lies beyond the current animation count.
func (set *AnimationSet) AddAnimation(id AnimID, frames []AnimFrame) error {
	if id < 0 {
		return fmt.Errorf("invalid animation id %d", id)
	}
	if len(frames) == 0 {
		return fmt.Errorf("animation %d has no frames", id)
	}

	first := int32(len(set.Frames))
	for i, f := range frames {
		if i == len(frames)-1 {
			f.Next = first
		} else {
			f.Next = first + int32(i) + 1
		}
		set.Frames = append(set.Frames, f)
	}

	for int(id) >= len(set.Starts) {
		set.Starts = append(set.Starts, -1)
	}
	set.Starts[id] = first
	return nil
}
