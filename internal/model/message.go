package model

import "time"

// Message is a mail message as listed and displayed by the reader.
type Message struct {
	// ID is stable across sessions: the Message-ID header when present,
	// otherwise an id derived from the account and mailbox position.
	ID string `json:"id"`

	// AccountID is the configured account the message came from.
	AccountID string `json:"account_id"`

	From    string    `json:"from"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`

	// Raw is the full RFC 5322 message. It is empty until fetched.
	Raw []byte `json:"-"`
}

// Title implements list.DefaultItem.
func (m Message) Title() string {
	if m.Subject == "" {
		return "(no subject)"
	}
	return m.Subject
}

// Description implements list.DefaultItem.
func (m Message) Description() string {
	if m.Date.IsZero() {
		return m.From
	}
	return m.From + " · " + m.Date.Format("2006-01-02 15:04")
}

// FilterValue implements list.Item.
func (m Message) FilterValue() string {
	return m.Subject + " " + m.From
}
