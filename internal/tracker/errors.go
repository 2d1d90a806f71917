package tracker

import "errors"

// ErrMigrationNotFound indicates no record exists for the given migration version.
var ErrMigrationNotFound = errors.New("migration not found in _migrations")

// ErrChecksumMismatch indicates the recorded checksum differs from the script on disk.
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// ErrTableCreation indicates the _migrations table could not be created.
var ErrTableCreation = errors.New("creating _migrations table")
