package metadata

import "github.com/google/uuid"

/**
 * @brief A stable identity token carried by every loaded resource.
 * Recipe and reload side tables are keyed by it, so they never extend
 * the resource's lifetime; disposing a resource removes its token from
 * the tables explicitly.
 */
type Token = uuid.UUID

func NewToken() Token {
	return uuid.New()
}
