package core

import (
	"errors"
)

var (
	// ErrAssetCorrupt marks a mandatory asset that is missing or undecodable.
	// The game cannot proceed without it, so loads wrapping this error abort.
	ErrAssetCorrupt = errors.New("asset missing or corrupt")
	// ErrUsage marks a programming mistake at the call site.
	ErrUsage = errors.New("usage error")
)
