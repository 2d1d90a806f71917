package migration

import (
	"crypto/sha256"
	"encoding/hex"
)

// Migration is a single versioned SQL script discovered on disk.
type Migration struct {
	Version  string // "001", the leading digits of the filename
	Number   int64  // parsed value of Version, used for ordering
	Name     string // "001_init_schema", the filename without .sql
	SQL      string // trimmed script contents
	Checksum string // SHA-256 hex digest of SQL
	FilePath string
}

// ComputeChecksum returns the SHA-256 hex digest of the given SQL string.
func ComputeChecksum(sql string) string {
	h := sha256.Sum256([]byte(sql))

	return hex.EncodeToString(h[:])
}
