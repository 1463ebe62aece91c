package metadata

/**
 * @brief A hardware/software cursor cut from one frame of a sprite sheet.
 * Cursors are built from sheets, so on a target change they rebuild only
 * after their dependent sheet.
 */
type Cursor struct {
	Sheet *Sheet
	Index int
	Token Token
	/** @brief Backend-owned handle. */
	InternalData interface{}
}
