package sqlite

// One row per record. A value stored directly at collection level uses the
// empty key, which no valid path segment can produce.
const (
	createNodes = `CREATE TABLE IF NOT EXISTS nodes (
    collection TEXT NOT NULL,
    key TEXT NOT NULL,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (collection, key)
);`

	createNodesUpdatedIndex = `CREATE INDEX IF NOT EXISTS idx_nodes_updated ON nodes (collection, updated_at);`
)

// schemaStatements lists the DDL run on open, in order.
var schemaStatements = []string{
	createNodes,
	createNodesUpdatedIndex,
}

// pragmas applied to every connection before the schema.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// scalarKey marks a value stored at collection level.
const scalarKey = ""
