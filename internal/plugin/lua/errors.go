package lua

import "errors"

// Errors returned by Lua completion sources.
var (
	ErrSourceClosed = errors.New("lua source closed")
	ErrNoComplete   = errors.New("script defines no complete function")
	ErrBadResult    = errors.New("complete returned a non-table result")
)
