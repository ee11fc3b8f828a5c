package mail

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// ErrNoBody is returned when a message has no text part to translate.
var ErrNoBody = errors.New("message has no text body")

// BodyHTML returns the HTML to translate for a raw message: the first
// inline text/html part, or else the first inline text/plain part escaped
// with newlines turned into <br>. Attachments are ignored.
func BodyHTML(raw []byte) (string, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing message: %w", err)
	}
	defer mr.Close()

	var htmlBody, textBody string
	var haveHTML, haveText bool

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		if contentType == "" {
			contentType = "text/plain"
		}
		switch {
		case contentType == "text/html" && !haveHTML:
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return "", fmt.Errorf("reading html part: %w", err)
			}
			htmlBody, haveHTML = string(body), true
		case contentType == "text/plain" && !haveText:
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return "", fmt.Errorf("reading text part: %w", err)
			}
			textBody, haveText = string(body), true
		}
	}

	switch {
	case haveHTML:
		return htmlBody, nil
	case haveText:
		return PlainToHTML(textBody), nil
	default:
		return "", ErrNoBody
	}
}

// PlainToHTML escapes text and turns newlines into <br>.
func PlainToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}

// ParseHeader reads the summary fields of a raw message. id falls back to
// fallbackID when the message has no Message-ID.
func ParseHeader(raw []byte, accountID, fallbackID string) (model.Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return model.Message{}, fmt.Errorf("parsing message header: %w", err)
	}
	defer mr.Close()

	msg := model.Message{AccountID: accountID, ID: fallbackID}

	if id, err := mr.Header.MessageID(); err == nil && id != "" {
		msg.ID = id
	}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if date, err := mr.Header.Date(); err == nil {
		msg.Date = date
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = formatAddress(from[0])
	}
	if to, err := mr.Header.AddressList("To"); err == nil {
		addrs := make([]string, 0, len(to))
		for _, a := range to {
			addrs = append(addrs, a.Address)
		}
		msg.To = strings.Join(addrs, ", ")
	}

	return msg, nil
}

func formatAddress(a *mail.Address) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Address
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// blockPattern matches tags that end a line of text.
var blockPattern = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr|h[1-6])>`)

// dropPattern matches elements whose content is never shown.
var dropPattern = regexp.MustCompile(`(?is)<(style|script|head)[^>]*>.*?</(style|script|head)>`)

// StripHTML removes HTML tags and decodes entities, giving a plain-text
// rendering suitable for the terminal.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}

	result := dropPattern.ReplaceAllString(s, "")
	result = blockPattern.ReplaceAllString(result, "\n")
	result = htmlTagPattern.ReplaceAllString(result, "")
	result = html.UnescapeString(result)
	result = strings.ReplaceAll(result, "\u00a0", " ")

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
