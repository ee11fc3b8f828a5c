package store

import (
	"context"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// MessageFilter controls which cached messages are returned.
type MessageFilter struct {
	AccountID *string
	Query     *string
	Limit     int
	Offset    int
}

// HistoryFilter controls which translation history records are returned.
type HistoryFilter struct {
	MessageID  *string
	ProviderID *string
	Status     *string
	Limit      int
}

// Store defines the persistence interface for cached messages and the
// translation history.
type Store interface {
	// === Messages ===

	UpsertMessages(ctx context.Context, msgs []model.Message) error
	GetMessages(ctx context.Context, filter MessageFilter) ([]model.Message, error)
	GetMessageByID(ctx context.Context, id string) (*model.Message, error)

	// === Translation history ===

	RecordTranslation(ctx context.Context, rec model.HistoryRecord) error
	GetHistory(ctx context.Context, filter HistoryFilter) ([]model.HistoryRecord, error)
	PruneHistory(ctx context.Context, keep int) (int64, error)

	Close() error
}
