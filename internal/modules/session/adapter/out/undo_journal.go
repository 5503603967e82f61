package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"lootledger/internal/modules/session/domain"
	sessionout "lootledger/internal/modules/session/port/out"
	apperrors "lootledger/internal/platform/errors"
)

const undoExt = ".undo.zst"

type undoRecord struct {
	Token     string          `yaml:"token"`
	Kind      string          `yaml:"kind"`
	CreatedAt string          `yaml:"created_at"`
	ExpiresAt string          `yaml:"expires_at"`
	Restore   []sessionRecord `yaml:"restore"`
	Discard   []string        `yaml:"discard,omitempty"`
}

// FileUndoJournal stores each undo entry as one compressed file. Entries
// survive restarts so a token stays usable until it expires.
type FileUndoJournal struct {
	dir   string
	codec zstdCodec
	mu    sync.Mutex
}

func NewFileUndoJournal(dir string) sessionout.UndoJournal {
	return &FileUndoJournal{dir: dir}
}

// Push records entry and then drops the oldest entries beyond depth.
func (j *FileUndoJournal) Push(_ context.Context, entry domain.UndoEntry, depth int) error {
	if err := validateFileKey(entry.Token); err != nil {
		return err
	}
	rec := undoRecord{
		Token:     entry.Token,
		Kind:      string(entry.Kind),
		CreatedAt: formatTime(&entry.CreatedAt),
		ExpiresAt: formatTime(&entry.ExpiresAt),
		Discard:   append([]string(nil), entry.Discard...),
	}
	for _, session := range entry.Restore {
		rec.Restore = append(rec.Restore, toRecord(session))
	}
	doc, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal undo entry: %w", err)
	}
	raw, err := j.codec.encode(doc)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := writeAtomic(filepath.Join(j.dir, entry.Token+undoExt), raw); err != nil {
		return err
	}
	if depth <= 0 {
		return nil
	}
	entries, err := j.readAll()
	if err != nil {
		return err
	}
	for len(entries) > depth {
		if err := j.remove(entries[0].Token); err != nil {
			return err
		}
		entries = entries[1:]
	}
	return nil
}

// Take removes and returns the entry for token.
func (j *FileUndoJournal) Take(_ context.Context, token string) (domain.UndoEntry, error) {
	if err := validateFileKey(token); err != nil {
		return domain.UndoEntry{}, fmt.Errorf("%w: %s", apperrors.ErrUndoNotFound, token)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	entry, err := j.read(filepath.Join(j.dir, token+undoExt))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.UndoEntry{}, fmt.Errorf("%w: %s", apperrors.ErrUndoNotFound, token)
		}
		return domain.UndoEntry{}, err
	}
	if err := j.remove(token); err != nil {
		return domain.UndoEntry{}, err
	}
	return entry, nil
}

// Prune drops every entry that expired before now.
func (j *FileUndoJournal) Prune(_ context.Context, now time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	entries, err := j.readAll()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Usable(now) != nil {
			if err := j.remove(entry.Token); err != nil {
				return err
			}
		}
	}
	return nil
}

// readAll returns entries oldest first.
func (j *FileUndoJournal) readAll() ([]domain.UndoEntry, error) {
	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read undo dir: %w", err)
	}
	out := make([]domain.UndoEntry, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), undoExt) {
			continue
		}
		entry, err := j.read(filepath.Join(j.dir, f.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].Token < out[b].Token
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out, nil
}

func (j *FileUndoJournal) read(path string) (domain.UndoEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.UndoEntry{}, err
	}
	doc, err := j.codec.decode(raw)
	if err != nil {
		return domain.UndoEntry{}, err
	}
	rec := undoRecord{}
	if err := yaml.Unmarshal(doc, &rec); err != nil {
		return domain.UndoEntry{}, fmt.Errorf("decode undo entry: %w", err)
	}
	created, err := parseTime(rec.CreatedAt)
	if err != nil || created == nil {
		return domain.UndoEntry{}, fmt.Errorf("%w: undo %s created_at", apperrors.ErrInvalidInput, rec.Token)
	}
	expires, err := parseTime(rec.ExpiresAt)
	if err != nil || expires == nil {
		return domain.UndoEntry{}, fmt.Errorf("%w: undo %s expires_at", apperrors.ErrInvalidInput, rec.Token)
	}
	entry := domain.UndoEntry{
		Token:     rec.Token,
		Kind:      domain.UndoKind(rec.Kind),
		CreatedAt: *created,
		ExpiresAt: *expires,
		Discard:   rec.Discard,
	}
	for _, sr := range rec.Restore {
		session, err := sr.toDomain()
		if err != nil {
			return domain.UndoEntry{}, err
		}
		entry.Restore = append(entry.Restore, session)
	}
	return entry, nil
}

func (j *FileUndoJournal) remove(token string) error {
	if err := os.Remove(filepath.Join(j.dir, token+undoExt)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove undo entry %s: %w", token, err)
	}
	return nil
}
