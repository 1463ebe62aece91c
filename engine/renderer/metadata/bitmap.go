package metadata

/**
 * @brief A raw full-frame bitmap bound to a palette and the current
 * rendering target.
 */
type RawBitmap struct {
	Name    string
	Width   int
	Height  int
	Palette *Palette
	Token   Token
	/** @brief Target generation the backing data was built against. */
	Generation uint64
	/** @brief Backend-owned handle for the decoded frame. */
	InternalData interface{}
}
