package catalog

import "errors"

var (
	ErrNotFound     = errors.New("item not found")
	ErrParseSkipped = errors.New("record skipped")
	ErrPersistence  = errors.New("persistence failure")
	ErrNoSnapshot   = errors.New("no snapshot available")
)
