package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lootledger/internal/modules/session/domain"

	_ "modernc.org/sqlite"
)

// SQLiteHistoryProjector is a rebuildable index of session summaries. The
// session files stay authoritative.
type SQLiteHistoryProjector struct {
	db *sql.DB
}

func NewSQLiteHistoryProjector(dbPath string) (*SQLiteHistoryProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	projector := &SQLiteHistoryProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteHistoryProjector) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistoryProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session_history (
  id TEXT PRIMARY KEY,
  identity TEXT NOT NULL,
  started_at TEXT NOT NULL,
  started_unix_ns INTEGER NOT NULL,
  ended_at TEXT,
  status TEXT NOT NULL,
  duration_sec INTEGER NOT NULL,
  cash INTEGER NOT NULL,
  inventory INTEGER NOT NULL,
  net_worth INTEGER NOT NULL,
  income INTEGER NOT NULL,
  expenses INTEGER NOT NULL,
  realized INTEGER NOT NULL,
  merged_from TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS session_history_identity ON session_history (identity, started_unix_ns);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session_history table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_history`); err != nil {
		return fmt.Errorf("reset session history: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) Upsert(ctx context.Context, summary domain.Summary) error {
	const stmt = `
INSERT INTO session_history (id, identity, started_at, started_unix_ns, ended_at, status, duration_sec, cash, inventory, net_worth, income, expenses, realized, merged_from)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  identity=excluded.identity,
  started_at=excluded.started_at,
  started_unix_ns=excluded.started_unix_ns,
  ended_at=excluded.ended_at,
  status=excluded.status,
  duration_sec=excluded.duration_sec,
  cash=excluded.cash,
  inventory=excluded.inventory,
  net_worth=excluded.net_worth,
  income=excluded.income,
  expenses=excluded.expenses,
  realized=excluded.realized,
  merged_from=excluded.merged_from;
`
	merged, err := json.Marshal(append([]string{}, summary.MergedFrom...))
	if err != nil {
		return fmt.Errorf("marshal merged_from: %w", err)
	}
	_, err = s.db.ExecContext(ctx, stmt,
		summary.ID,
		summary.Identity,
		formatTime(&summary.StartedAt),
		summary.StartedAt.UnixNano(),
		formatTime(summary.EndedAt),
		summary.Status,
		summary.DurationSec,
		summary.Cash,
		summary.Inventory,
		summary.NetWorth,
		summary.Income,
		summary.Expenses,
		summary.Realized,
		string(merged),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", summary.ID, err)
	}
	return nil
}

func (s *SQLiteHistoryProjector) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// List returns summaries oldest first. An empty identity lists everyone.
func (s *SQLiteHistoryProjector) List(ctx context.Context, identity string, includeArchived bool) ([]domain.Summary, error) {
	const query = `
SELECT id, identity, started_at, ended_at, status, duration_sec, cash, inventory, net_worth, income, expenses, realized, merged_from
FROM session_history
WHERE (? = '' OR identity = ?) AND (? OR status <> ?)
ORDER BY started_unix_ns, id;
`
	rows, err := s.db.QueryContext(ctx, query, identity, identity, includeArchived, domain.StatusArchived)
	if err != nil {
		return nil, fmt.Errorf("list session history: %w", err)
	}
	defer rows.Close()

	out := []domain.Summary{}
	for rows.Next() {
		var (
			summary         domain.Summary
			started, merged string
			ended           sql.NullString
		)
		if err := rows.Scan(&summary.ID, &summary.Identity, &started, &ended, &summary.Status, &summary.DurationSec,
			&summary.Cash, &summary.Inventory, &summary.NetWorth, &summary.Income, &summary.Expenses, &summary.Realized, &merged); err != nil {
			return nil, fmt.Errorf("scan session history: %w", err)
		}
		startedAt, err := time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", summary.ID, err)
		}
		summary.StartedAt = startedAt
		if summary.EndedAt, err = parseTime(ended.String); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(merged), &summary.MergedFrom); err != nil {
			return nil, fmt.Errorf("decode merged_from of %s: %w", summary.ID, err)
		}
		if len(summary.MergedFrom) == 0 {
			summary.MergedFrom = nil
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}
