// Package mail lists and fetches messages from configured accounts and
// extracts the body that gets translated.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// Source is a mailbox the reader can list and open messages from.
type Source interface {
	// AccountID returns the configured account id.
	AccountID() string

	// List returns the most recent message summaries, newest first. Raw
	// is not populated.
	List(ctx context.Context) ([]model.Message, error)

	// Fetch returns the message with the given id, including Raw.
	Fetch(ctx context.Context, id string) (model.Message, error)
}

// AuthError indicates that authentication failed for an account.
type AuthError struct {
	AccountID string
	Message   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.AccountID, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ErrMessageNotFound is returned by Fetch for unknown ids.
var ErrMessageNotFound = errors.New("message not found")

// PasswordFunc looks up the password for an account.
type PasswordFunc func(accountID string) (string, error)

// NewSource builds the Source for an account configuration.
func NewSource(cfg model.AccountConfig, password PasswordFunc) (Source, error) {
	switch cfg.Type {
	case model.AccountTypeIMAP:
		var pw string
		if password != nil {
			var err error
			pw, err = password(cfg.ID)
			if err != nil {
				return nil, fmt.Errorf("loading password for account %s: %w", cfg.ID, err)
			}
		}
		return NewIMAPSource(cfg, pw), nil
	case model.AccountTypeDir:
		return NewDirSource(cfg.ID, cfg.Path, cfg.Limit), nil
	default:
		return nil, fmt.Errorf("account %s: unknown type %q", cfg.ID, cfg.Type)
	}
}
