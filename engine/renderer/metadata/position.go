package metadata

/**
 * @brief A marker position. Tile coordinates go through the world
 * projection (with the +1 tile offset bias, floored); pixel literals are
 * used as-is.
 */
type Position struct {
	X      int
	Y      int
	Pixels bool
}

// Tile builds a tile-space position.
func Tile(x, y int) Position {
	return Position{X: x, Y: y}
}

// Px builds a literal pixel-space position.
func Px(x, y int) Position {
	return Position{X: x, Y: y, Pixels: true}
}

// Projector converts tile coordinates to screen pixels. Collaborator
// contract, owned by the world renderer.
type Projector interface {
	WorldToScreen(tileX, tileY int) (float64, float64)
}
