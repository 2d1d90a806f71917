package tracker

// TableName is the tracking table owned by the runner.
const TableName = "_migrations"

// createSchemaSQL is the DDL for the _migrations tracking table.
const createSchemaSQL = `CREATE TABLE IF NOT EXISTS _migrations (
    migration_id      INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    version           VARCHAR(20) NOT NULL UNIQUE,
    name              VARCHAR(255) NOT NULL,
    applied_at        TIMESTAMPTZ DEFAULT NOW(),
    applied_by        VARCHAR(100),
    checksum          VARCHAR(64),
    execution_time_ms INTEGER,
    status            VARCHAR(16) NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'applied', 'failed', 'rolled_back'))
)`

// Status values stored in _migrations.status.
const (
	StatusPending    = "pending"
	StatusApplied    = "applied"
	StatusFailed     = "failed"
	StatusRolledBack = "rolled_back"
)
