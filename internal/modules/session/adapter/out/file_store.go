package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"lootledger/internal/modules/session/domain"
	apperrors "lootledger/internal/platform/errors"
)

// codec turns a session document into file bytes and back.
type codec interface {
	encode(doc []byte) ([]byte, error)
	decode(raw []byte) ([]byte, error)
}

// fileSessionStore keeps one file per session under dir, named <id><ext>.
type fileSessionStore struct {
	dir   string
	ext   string
	codec codec
	mu    sync.Mutex
}

func (s *fileSessionStore) Save(_ context.Context, session *domain.Session) error {
	path, err := s.path(session.ID)
	if err != nil {
		return err
	}
	doc, err := marshalSession(session)
	if err != nil {
		return err
	}
	raw, err := s.codec.encode(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(path, raw)
}

func (s *fileSessionStore) Load(_ context.Context, id string) (*domain.Session, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(path)
}

func (s *fileSessionStore) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// List returns every stored session ordered by start time.
func (s *fileSessionStore) List(_ context.Context) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	out := make([]*domain.Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.ext) {
			continue
		}
		session, err := s.read(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

func (s *fileSessionStore) read(path string) (*domain.Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, strings.TrimSuffix(filepath.Base(path), s.ext))
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	doc, err := s.codec.decode(raw)
	if err != nil {
		return nil, err
	}
	session, err := unmarshalSession(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return session, nil
}

func (s *fileSessionStore) path(id string) (string, error) {
	if err := validateFileKey(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+s.ext), nil
}

// validateFileKey rejects IDs that would escape the store directory.
func validateFileKey(key string) error {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: invalid id %q", apperrors.ErrInvalidInput, key)
	}
	return nil
}

func writeAtomic(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
