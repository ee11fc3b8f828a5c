package mail

import (
	"context"
	"fmt"
	"net"
	"strconv"
	gosync "sync"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// IMAPSource lists and fetches messages from one IMAP mailbox over
// implicit TLS.
type IMAPSource struct {
	accountID string
	addr      string
	username  string
	password  string
	mailbox   string
	limit     int

	mu       gosync.Mutex
	uidsByID map[string]imap.UID
}

// NewIMAPSource creates an IMAP source for cfg.
func NewIMAPSource(cfg model.AccountConfig, password string) *IMAPSource {
	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	port := cfg.Port
	if port == 0 {
		port = 993
	}
	return &IMAPSource{
		accountID: cfg.ID,
		addr:      net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		username:  cfg.Username,
		password:  password,
		mailbox:   mailbox,
		limit:     cfg.Limit,
		uidsByID:  make(map[string]imap.UID),
	}
}

// AccountID returns the configured account id.
func (s *IMAPSource) AccountID() string { return s.accountID }

// connect dials, authenticates and selects the mailbox. The connection is
// closed when ctx ends; the caller must call the returned release func.
func (s *IMAPSource) connect(ctx context.Context) (*imapclient.Client, *imap.SelectData, func(), error) {
	client, err := imapclient.DialTLS(s.addr, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to IMAP %s: %w", s.addr, err)
	}

	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	release := func() {
		stop()
		_ = client.Logout().Wait()
	}

	if err := client.Login(s.username, s.password).Wait(); err != nil {
		release()
		return nil, nil, nil, &AuthError{
			AccountID: s.accountID,
			Message:   fmt.Sprintf("authentication failed for %s: %v", s.username, err),
		}
	}

	sel, err := client.Select(s.mailbox, nil).Wait()
	if err != nil {
		release()
		return nil, nil, nil, fmt.Errorf("selecting %s: %w", s.mailbox, err)
	}

	return client, sel, release, nil
}

// List fetches the envelopes of the newest messages in the mailbox.
func (s *IMAPSource) List(ctx context.Context) ([]model.Message, error) {
	client, sel, release, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if sel.NumMessages == 0 {
		return nil, nil
	}

	first := uint32(1)
	if s.limit > 0 && sel.NumMessages > uint32(s.limit) {
		first = sel.NumMessages - uint32(s.limit) + 1
	}
	var seqSet imap.SeqSet
	seqSet.AddRange(first, sel.NumMessages)

	fetchCmd := client.Fetch(seqSet, &imap.FetchOptions{
		Envelope: true,
		UID:      true,
	})
	defer fetchCmd.Close()

	var msgs []model.Message
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		msgs = append(msgs, s.messageFromBuffer(buf))
	}

	if err := fetchCmd.Close(); err != nil {
		return msgs, fmt.Errorf("fetching envelopes: %w", err)
	}

	// Sequence order is oldest first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Fetch downloads the full message. The id must come from a previous List.
func (s *IMAPSource) Fetch(ctx context.Context, id string) (model.Message, error) {
	s.mu.Lock()
	uid, ok := s.uidsByID[id]
	s.mu.Unlock()
	if !ok {
		return model.Message{}, fmt.Errorf("%s: %w", id, ErrMessageNotFound)
	}

	client, _, release, err := s.connect(ctx)
	if err != nil {
		return model.Message{}, err
	}
	defer release()

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(uid), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return model.Message{}, fmt.Errorf("UID %d: %w", uid, ErrMessageNotFound)
	}

	buf, err := msg.Collect()
	if err != nil {
		return model.Message{}, fmt.Errorf("collecting message data: %w", err)
	}

	out := s.messageFromBuffer(buf)
	out.Raw = buf.FindBodySection(bodySection)

	if err := fetchCmd.Close(); err != nil {
		return out, fmt.Errorf("closing fetch: %w", err)
	}
	return out, nil
}

// messageFromBuffer converts fetched envelope data and remembers the UID
// for later fetches.
func (s *IMAPSource) messageFromBuffer(buf *imapclient.FetchMessageBuffer) model.Message {
	msg := model.Message{AccountID: s.accountID}

	if env := buf.Envelope; env != nil {
		msg.ID = env.MessageID
		msg.Subject = env.Subject
		msg.Date = env.Date

		if len(env.From) > 0 {
			from := env.From[0]
			if from.Name != "" {
				msg.From = from.Name
			} else {
				msg.From = from.Addr()
			}
		}
		if len(env.To) > 0 {
			msg.To = env.To[0].Addr()
		}
	}

	if msg.ID == "" {
		msg.ID = fmt.Sprintf("%s/%s/uid-%d", s.accountID, s.mailbox, buf.UID)
	}

	s.mu.Lock()
	s.uidsByID[msg.ID] = buf.UID
	s.mu.Unlock()

	return msg
}
