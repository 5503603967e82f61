package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lootledger/internal/modules/session/domain"
	sessionout "lootledger/internal/modules/session/port/out"
	"lootledger/internal/platform/markdown"
	"lootledger/internal/platform/money"
	"lootledger/internal/platform/slug"
)

const reportBlock = "summary"

// MarkdownReportStore writes one note per session. Rewriting a report only
// replaces the generated block, so notes added by hand survive.
type MarkdownReportStore struct {
	dir string
}

func NewMarkdownReportStore(dir string) sessionout.ReportStore {
	return &MarkdownReportStore{dir: dir}
}

func (s *MarkdownReportStore) Write(_ context.Context, session *domain.Session, summary domain.Summary) (string, error) {
	if err := validateFileKey(session.ID); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, slug.Make(session.Identity), session.ID+".md")

	doc := markdown.Document{Meta: map[string]any{}, Body: fmt.Sprintf("# %s session %s\n", session.Identity, session.StartedAt.UTC().Format("2006-01-02 15:04"))}
	if existing, err := os.ReadFile(path); err == nil {
		parsed, err := markdown.Parse(string(existing))
		if err != nil {
			return "", fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
		}
		doc.Body = parsed.Body
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read report: %w", err)
	}

	doc.Meta = reportMeta(summary)
	doc.Body = markdown.ReplaceManagedBlock(doc.Body, reportBlock, renderReport(session, summary))
	rendered, err := doc.Render()
	if err != nil {
		return "", err
	}
	if err := writeAtomic(path, []byte(rendered)); err != nil {
		return "", err
	}
	return path, nil
}

func reportMeta(summary domain.Summary) map[string]any {
	meta := map[string]any{
		"schema_version": domain.SchemaVersion,
		"id":             summary.ID,
		"identity":       summary.Identity,
		"status":         summary.Status,
		"started_at":     formatTime(&summary.StartedAt),
		"duration_sec":   summary.DurationSec,
		"net_worth":      summary.NetWorth,
		"cash":           summary.Cash,
		"inventory":      summary.Inventory,
		"realized":       summary.Realized,
	}
	if summary.EndedAt != nil {
		meta["ended_at"] = formatTime(summary.EndedAt)
	}
	if len(summary.MergedFrom) > 0 {
		meta["merged_from"] = summary.MergedFrom
	}
	return meta
}

func renderReport(session *domain.Session, summary domain.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Totals\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Duration | %s |\n", (time.Duration(summary.DurationSec) * time.Second).String())
	fmt.Fprintf(&b, "| Net worth | %s |\n", money.Format(summary.NetWorth))
	fmt.Fprintf(&b, "| Cash | %s |\n", money.Format(summary.Cash))
	fmt.Fprintf(&b, "| Inventory | %s |\n", money.Format(summary.Inventory))
	fmt.Fprintf(&b, "| Income | %s |\n", money.Format(summary.Income))
	fmt.Fprintf(&b, "| Expenses | %s |\n", money.Format(summary.Expenses))
	fmt.Fprintf(&b, "| Realized | %s |\n", money.Format(summary.Realized))

	if len(session.Items) > 0 {
		ids := make([]int64, 0, len(session.Items))
		for id := range session.Items {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, c := session.Items[ids[i]], session.Items[ids[j]]
			if a.AcquiredValue != c.AcquiredValue {
				return a.AcquiredValue > c.AcquiredValue
			}
			return ids[i] < ids[j]
		})
		fmt.Fprintf(&b, "\n## Items\n\n| Item | Bucket | Looted | Value | Disposed | Proceeds |\n|---|---|---|---|---|---|\n")
		for _, id := range ids {
			agg := session.Items[id]
			name := agg.Name
			if name == "" {
				name = fmt.Sprintf("item %d", id)
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %d | %s |\n", name, agg.Bucket, agg.AcquiredCount, money.Format(agg.AcquiredValue), agg.DisposedCount, money.Format(agg.Proceeds))
		}
	}

	if len(session.Counters) > 0 {
		names := make([]string, 0, len(session.Counters))
		for name := range session.Counters {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "\n## Counters\n\n")
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d\n", name, session.Counters[name].Total)
		}
	}
	return b.String()
}
