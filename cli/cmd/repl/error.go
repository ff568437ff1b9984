package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrInvalidName  = errors.New("invalid variable name")
	ErrReservedName = errors.New("reserved variable name")
	ErrLetUsage     = errors.New("usage: let NAME FORMULA")
)
