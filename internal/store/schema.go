package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    message_id           TEXT NOT NULL,
    timestamp            TEXT NOT NULL,
    tokens               INTEGER NOT NULL,
    PRIMARY KEY (file_path, message_id)
);

CREATE TABLE IF NOT EXISTS reports (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp            TEXT NOT NULL,
    status               TEXT NOT NULL,
    plan                 TEXT NOT NULL,
    tokens_used          INTEGER NOT NULL,
    token_limit          INTEGER NOT NULL,
    tokens_left          INTEGER NOT NULL,
    usage_percent        REAL NOT NULL,
    burn_rate_per_min    REAL NOT NULL,
    auto_switched        INTEGER NOT NULL DEFAULT 0,
    predicted_end_time   TEXT,
    reset_time           TEXT,
    will_exhaust         INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp);
CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON reports(timestamp);
`
