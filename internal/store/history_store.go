package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// RecordTranslation stores a finished translation attempt. Missing ids and
// timestamps are filled in.
func (s *SQLiteStore) RecordTranslation(ctx context.Context, rec model.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO translation_history (
			id, message_id, provider_id, target_language, status,
			error_text, input_bytes, output_bytes, created_at
		) VALUES (
			:id, :message_id, :provider_id, :target_language, :status,
			:error_text, :input_bytes, :output_bytes, :created_at
		)`, rec)
	if err != nil {
		return fmt.Errorf("recording translation %s: %w", rec.ID, err)
	}
	return nil
}

// GetHistory returns history records, newest first.
func (s *SQLiteStore) GetHistory(ctx context.Context, filter HistoryFilter) ([]model.HistoryRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.MessageID != nil {
		conditions = append(conditions, "message_id = ?")
		args = append(args, *filter.MessageID)
	}
	if filter.ProviderID != nil {
		conditions = append(conditions, "provider_id = ?")
		args = append(args, *filter.ProviderID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}

	query := "SELECT * FROM translation_history"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var records []model.HistoryRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("querying translation history: %w", err)
	}
	return records, nil
}

// PruneHistory deletes all but the newest keep records and returns how many
// were removed.
func (s *SQLiteStore) PruneHistory(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM translation_history
		WHERE id NOT IN (
			SELECT id FROM translation_history
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning translation history: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning translation history: %w", err)
	}
	return n, nil
}
