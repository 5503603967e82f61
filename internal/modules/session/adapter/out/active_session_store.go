package out

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sessionout "lootledger/internal/modules/session/port/out"
	apperrors "lootledger/internal/platform/errors"
)

type activePointer struct {
	Identity  string `json:"identity"`
	SessionID string `json:"session_id"`
}

// FileActiveSessionStore keeps one small pointer file per identity.
type FileActiveSessionStore struct {
	dir string
}

func NewFileActiveSessionStore(dir string) sessionout.ActiveSessionStore {
	return &FileActiveSessionStore{dir: dir}
}

func (s *FileActiveSessionStore) SaveActive(_ context.Context, identity, sessionID string) error {
	payload, err := json.MarshalIndent(activePointer{Identity: identity, SessionID: sessionID}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	return writeAtomic(s.path(identity), payload)
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context, identity string) (string, error) {
	payload, err := os.ReadFile(s.path(identity))
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.ErrNoActiveSession
		}
		return "", fmt.Errorf("read active session: %w", err)
	}
	active := activePointer{}
	if err := json.Unmarshal(payload, &active); err != nil {
		return "", fmt.Errorf("decode active session: %w", err)
	}
	if active.SessionID == "" || active.Identity != identity {
		return "", apperrors.ErrNoActiveSession
	}
	return active.SessionID, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context, identity string) error {
	if err := os.Remove(s.path(identity)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

// path encodes the identity verbatim so keys differing only in case or
// punctuation never share a pointer file.
func (s *FileActiveSessionStore) path(identity string) string {
	return filepath.Join(s.dir, base64.RawURLEncoding.EncodeToString([]byte(identity))+".json")
}
