package model

import "time"

// Translation history statuses.
const (
	HistoryStatusSuccess = "success"
	HistoryStatusFailed  = "failed"
)

// HistoryRecord is one finished translation attempt.
type HistoryRecord struct {
	ID             string    `db:"id" json:"id"`
	MessageID      string    `db:"message_id" json:"message_id"`
	ProviderID     string    `db:"provider_id" json:"provider_id"`
	TargetLanguage string    `db:"target_language" json:"target_language"`
	Status         string    `db:"status" json:"status"`
	ErrorText      string    `db:"error_text" json:"error_text,omitempty"`
	InputBytes     int       `db:"input_bytes" json:"input_bytes"`
	OutputBytes    int       `db:"output_bytes" json:"output_bytes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
