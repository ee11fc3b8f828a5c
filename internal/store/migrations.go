package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL,
	from_addr   TEXT NOT NULL DEFAULT '',
	to_addr     TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	date        DATETIME NOT NULL,
	raw         BLOB,
	fetched_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_account_id ON messages(account_id);
CREATE INDEX IF NOT EXISTS idx_messages_date ON messages(date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS translation_history (
	id              TEXT PRIMARY KEY,
	message_id      TEXT NOT NULL DEFAULT '',
	provider_id     TEXT NOT NULL,
	target_language TEXT NOT NULL,
	status          TEXT NOT NULL,
	error_text      TEXT NOT NULL DEFAULT '',
	input_bytes     INTEGER NOT NULL DEFAULT 0,
	output_bytes    INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_translation_history_message_id ON translation_history(message_id);
CREATE INDEX IF NOT EXISTS idx_translation_history_created_at ON translation_history(created_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
