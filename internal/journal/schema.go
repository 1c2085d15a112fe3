package journal

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at  TEXT NOT NULL,
    finished_at TEXT,
    items       INTEGER NOT NULL DEFAULT 0,
    failures    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    item_id    TEXT NOT NULL,
    filename   TEXT NOT NULL,
    output     TEXT NOT NULL,
    status     TEXT NOT NULL,
    bytes_in   INTEGER NOT NULL,
    bytes_out  INTEGER NOT NULL,
    warnings   TEXT NOT NULL DEFAULT '',
    errors     TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_items_run ON run_items(run_id);
`

func (s *Store) initSchema(ctx context.Context) error {
	return s.execWithoutResultRetry(ctx, schema)
}
