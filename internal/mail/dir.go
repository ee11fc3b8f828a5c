package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	gosync "sync"

	"github.com/costantinoai/evolution-mail-translate/internal/model"
)

// DirSource serves messages from a directory of .eml files.
type DirSource struct {
	accountID string
	dir       string
	limit     int

	mu        gosync.Mutex
	pathsByID map[string]string
}

// NewDirSource creates a source reading dir. limit <= 0 lists everything.
func NewDirSource(accountID, dir string, limit int) *DirSource {
	return &DirSource{
		accountID: accountID,
		dir:       dir,
		limit:     limit,
		pathsByID: make(map[string]string),
	}
}

// AccountID returns the configured account id.
func (s *DirSource) AccountID() string { return s.accountID }

// List parses the headers of every .eml file, newest first. Files that
// cannot be parsed are skipped.
func (s *DirSource) List(ctx context.Context) ([]model.Message, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading mail directory %s: %w", s.dir, err)
	}

	var msgs []model.Message
	paths := make(map[string]string)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".eml") {
			continue
		}

		path := filepath.Join(s.dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		msg, err := ParseHeader(raw, s.accountID, s.accountID+"/"+e.Name())
		if err != nil {
			continue
		}
		msgs = append(msgs, msg)
		paths[msg.ID] = path
	}

	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Date.After(msgs[j].Date) })
	if s.limit > 0 && len(msgs) > s.limit {
		msgs = msgs[:s.limit]
	}

	s.mu.Lock()
	s.pathsByID = paths
	s.mu.Unlock()

	return msgs, nil
}

// Fetch reads the message file. The id must come from a previous List.
func (s *DirSource) Fetch(_ context.Context, id string) (model.Message, error) {
	s.mu.Lock()
	path, ok := s.pathsByID[id]
	s.mu.Unlock()
	if !ok {
		return model.Message{}, fmt.Errorf("%s: %w", id, ErrMessageNotFound)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Message{}, fmt.Errorf("reading %s: %w", path, err)
	}

	msg, err := ParseHeader(raw, s.accountID, id)
	if err != nil {
		return model.Message{}, err
	}
	msg.ID = id
	msg.Raw = raw
	return msg, nil
}
