package ledger

// Schema DDL. Tables are created on open when missing
const (
	createRuns = `CREATE TABLE IF NOT EXISTS threshold_runs (
    run_id TEXT PRIMARY KEY,
    root TEXT NOT NULL,
    k REAL NOT NULL,
    started_at TEXT NOT NULL,
    total_dropped INTEGER NOT NULL,
    total_remaining INTEGER NOT NULL,
    no_control INTEGER NOT NULL
);`

	createFiles = `CREATE TABLE IF NOT EXISTS threshold_files (
    run_id TEXT NOT NULL REFERENCES threshold_runs(run_id),
    position INTEGER NOT NULL,
    path TEXT NOT NULL,
    control TEXT NOT NULL,
    output TEXT NOT NULL,
    threshold REAL NOT NULL,
    dropped INTEGER NOT NULL,
    remaining INTEGER NOT NULL,
    status TEXT NOT NULL,
    error TEXT NOT NULL,
    PRIMARY KEY (run_id, position)
);`

	schemaSQL = createRuns + "\n" + createFiles
)
