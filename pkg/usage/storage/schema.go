package storage

// schemaVersion stamps the on-disk layout. Bump it together with
// createSchemaSQL when columns change.
const schemaVersion = 1

// createSchemaSQL builds the usage tables. Records hold request metadata
// only; message and response bodies are never written to disk.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS usage_records (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- model names
    model TEXT NOT NULL,
    requested_model TEXT NOT NULL,

    -- request shape
    messages INTEGER NOT NULL,
    stream BOOLEAN NOT NULL,

    -- outcome
    status TEXT NOT NULL,
    error_type TEXT,
    chunks INTEGER NOT NULL,

    -- timing
    latency INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_created_at ON usage_records(created_at);
CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model);
CREATE INDEX IF NOT EXISTS idx_usage_status ON usage_records(status);
CREATE INDEX IF NOT EXISTS idx_usage_request_id ON usage_records(request_id);
`

const (
	upsertVersionSQL = `INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now')) ON CONFLICT(version) DO NOTHING;`
	readVersionSQL   = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;`
)

// recordColumns lists the usage_records columns in insert and scan order.
const recordColumns = `id, request_id, model, requested_model, messages, stream, status, error_type, chunks, latency, created_at`
