package migration

import "errors"

// ErrDuplicateVersion indicates two script files resolve to the same numeric version.
var ErrDuplicateVersion = errors.New("duplicate migration version")

// ErrInvalidVersion indicates a filename prefix could not be parsed as a version number.
var ErrInvalidVersion = errors.New("invalid migration version")
