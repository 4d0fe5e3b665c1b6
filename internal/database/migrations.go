package database

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS local_store (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_sessions (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    owner TEXT NOT NULL,
    expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bill_sessions_expires_at ON bill_sessions (expires_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS bill_sessions (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    owner TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bill_sessions_expires_at ON bill_sessions (expires_at);
`
