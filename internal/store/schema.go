package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    file_path            TEXT NOT NULL,
    seq                  INTEGER NOT NULL,
    id                   TEXT NOT NULL,
    user_id              TEXT,
    kind                 TEXT NOT NULL,
    category             TEXT,
    amount               TEXT NOT NULL,
    date                 TEXT NOT NULL,
    description          TEXT,
    PRIMARY KEY (file_path, seq)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cache_meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`
