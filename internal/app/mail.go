package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/costantinoai/evolution-mail-translate/internal/mail"
)

// fetchTimeout bounds listing or fetching from one account.
const fetchTimeout = 60 * time.Second

// mailSyncedMsg is sent when every account has been listed.
type mailSyncedMsg struct {
	count   int
	authErr *mail.AuthError
	errs    []error
}

func (msg mailSyncedMsg) status() string {
	switch {
	case msg.authErr != nil:
		return msg.authErr.Error()
	case len(msg.errs) > 0:
		return fmt.Sprintf("Sync failed for %d account(s): %v", len(msg.errs), msg.errs[0])
	default:
		return fmt.Sprintf("%d messages synced", msg.count)
	}
}

// syncMail lists every account and caches the summaries in the store.
func (m *Model) syncMail() tea.Cmd {
	if len(m.sources) == 0 || m.store == nil {
		return nil
	}

	s := m.store
	sources := make([]mail.Source, 0, len(m.sources))
	for _, src := range m.sources {
		sources = append(sources, src)
	}
	logger := m.log

	return func() tea.Msg {
		var result mailSyncedMsg
		for _, src := range sources {
			l := logger.WithField("account", src.AccountID())

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			msgs, err := src.List(ctx)
			if err == nil {
				err = s.UpsertMessages(ctx, msgs)
			}
			cancel()

			if err != nil {
				l.WithError(err).Warn("Mail sync failed")
				var authErr *mail.AuthError
				if errors.As(err, &authErr) && result.authErr == nil {
					result.authErr = authErr
				}
				result.errs = append(result.errs, err)
				continue
			}
			l.WithField("count", len(msgs)).Debug("Mail synced")
			result.count += len(msgs)
		}
		return result
	}
}
