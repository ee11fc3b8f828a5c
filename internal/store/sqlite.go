package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// messageRow is the database shape of a cached message.
type messageRow struct {
	ID        string    `db:"id"`
	AccountID string    `db:"account_id"`
	From      string    `db:"from_addr"`
	To        string    `db:"to_addr"`
	Subject   string    `db:"subject"`
	Date      time.Time `db:"date"`
	Raw       []byte    `db:"raw"`
	FetchedAt time.Time `db:"fetched_at"`
}

func (r messageRow) toModel() model.Message {
	return model.Message{
		ID:        r.ID,
		AccountID: r.AccountID,
		From:      r.From,
		To:        r.To,
		Subject:   r.Subject,
		Date:      r.Date,
		Raw:       r.Raw,
	}
}

// UpsertMessages inserts or replaces a batch of messages. A message without
// a raw body keeps the body already cached for it.
func (s *SQLiteStore) UpsertMessages(ctx context.Context, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO messages (
			id, account_id, from_addr, to_addr, subject, date, raw, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			from_addr  = excluded.from_addr,
			to_addr    = excluded.to_addr,
			subject    = excluded.subject,
			date       = excluded.date,
			raw        = COALESCE(excluded.raw, messages.raw),
			fetched_at = excluded.fetched_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, m := range msgs {
		var raw any
		if len(m.Raw) > 0 {
			raw = m.Raw
		}
		_, err = stmt.ExecContext(ctx,
			m.ID, m.AccountID, m.From, m.To, m.Subject, m.Date.UTC(), raw, now,
		)
		if err != nil {
			return fmt.Errorf("upserting message %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// GetMessages retrieves cached messages, newest first.
func (s *SQLiteStore) GetMessages(ctx context.Context, filter MessageFilter) ([]model.Message, error) {
	var conditions []string
	var args []interface{}

	if filter.AccountID != nil {
		conditions = append(conditions, "account_id = ?")
		args = append(args, *filter.AccountID)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(subject LIKE ? OR from_addr LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM messages"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}

	msgs := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toModel())
	}
	return msgs, nil
}

// GetMessageByID retrieves a single cached message by its ID.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id string) (*model.Message, error) {
	var row messageRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM messages WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting message %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w", id, err)
	}

	m := row.toModel()
	return &m, nil
}
