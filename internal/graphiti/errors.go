package graphiti

import "errors"

// ErrNodeNotFound is returned by lookups that match no node.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvalidLimit is returned by Search for a non-positive result limit.
var ErrInvalidLimit = errors.New("search limit must be positive")
