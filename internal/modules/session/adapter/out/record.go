package out

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	holdings "lootledger/internal/modules/holdings/domain"
	ledger "lootledger/internal/modules/ledger/domain"
	"lootledger/internal/modules/session/domain"
	apperrors "lootledger/internal/platform/errors"
)

//go:embed schema/session.schema.json
var sessionSchemaText string

var sessionSchema = jsonschema.MustCompileString("session.schema.json", sessionSchemaText)

type sessionRecord struct {
	SchemaVersion int                      `yaml:"schema_version"`
	ID            string                   `yaml:"id"`
	Identity      string                   `yaml:"identity"`
	StartedAt     string                   `yaml:"started_at"`
	EndedAt       string                   `yaml:"ended_at,omitempty"`
	LoginAt       string                   `yaml:"login_at,omitempty"`
	PausedAt      string                   `yaml:"paused_at,omitempty"`
	Archived      bool                     `yaml:"archived"`
	MergedFrom    []string                 `yaml:"merged_from,omitempty"`
	AccumulatedNS int64                    `yaml:"accumulated_ns"`
	Ledger        ledgerRecord             `yaml:"ledger"`
	Holdings      []holdingRecord          `yaml:"holdings,omitempty"`
	Items         []aggregateRecord        `yaml:"items,omitempty"`
	Counters      map[string]counterRecord `yaml:"counters,omitempty"`
}

type ledgerRecord struct {
	Postings int              `yaml:"postings"`
	Balances map[string]int64 `yaml:"balances"`
}

type holdingRecord struct {
	ItemID int64       `yaml:"item_id"`
	Lots   []lotRecord `yaml:"lots"`
}

type lotRecord struct {
	Count        int64  `yaml:"count"`
	ValuePerUnit int64  `yaml:"value_per_unit"`
	Bucket       string `yaml:"bucket"`
}

type aggregateRecord struct {
	ItemID        int64  `yaml:"item_id"`
	Name          string `yaml:"name,omitempty"`
	Bucket        string `yaml:"bucket"`
	AcquiredCount int64  `yaml:"acquired_count"`
	AcquiredValue int64  `yaml:"acquired_value"`
	DisposedCount int64  `yaml:"disposed_count"`
	Proceeds      int64  `yaml:"proceeds"`
}

type counterRecord struct {
	Last    int64 `yaml:"last"`
	LastMax int64 `yaml:"last_max"`
	Total   int64 `yaml:"total"`
	Seen    bool  `yaml:"seen"`
}

func toRecord(s *domain.Session) sessionRecord {
	rec := sessionRecord{
		SchemaVersion: domain.SchemaVersion,
		ID:            s.ID,
		Identity:      s.Identity,
		StartedAt:     formatTime(&s.StartedAt),
		EndedAt:       formatTime(s.EndedAt),
		LoginAt:       formatTime(s.LoginAt),
		PausedAt:      formatTime(s.PausedAt),
		Archived:      s.Archived,
		MergedFrom:    append([]string(nil), s.MergedFrom...),
		AccumulatedNS: int64(s.Accumulated),
		Ledger:        ledgerRecord{Postings: s.Ledger.PostingCount(), Balances: s.Ledger.Balances()},
	}
	for _, item := range s.Holdings.Items() {
		h := holdingRecord{ItemID: item}
		for _, lot := range s.Holdings.Lots(item) {
			h.Lots = append(h.Lots, lotRecord{Count: lot.Count, ValuePerUnit: lot.ValuePerUnit, Bucket: lot.Bucket})
		}
		rec.Holdings = append(rec.Holdings, h)
	}
	ids := make([]int64, 0, len(s.Items))
	for id := range s.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		agg := s.Items[id]
		rec.Items = append(rec.Items, aggregateRecord{
			ItemID:        id,
			Name:          agg.Name,
			Bucket:        agg.Bucket,
			AcquiredCount: agg.AcquiredCount,
			AcquiredValue: agg.AcquiredValue,
			DisposedCount: agg.DisposedCount,
			Proceeds:      agg.Proceeds,
		})
	}
	if len(s.Counters) > 0 {
		rec.Counters = make(map[string]counterRecord, len(s.Counters))
		for name, c := range s.Counters {
			rec.Counters[name] = counterRecord{Last: c.Last, LastMax: c.LastMax, Total: c.Total, Seen: c.Seen}
		}
	}
	return rec
}

func (r sessionRecord) toDomain() (*domain.Session, error) {
	if r.SchemaVersion > domain.SchemaVersion {
		return nil, fmt.Errorf("%w: session %s has schema version %d, newest supported is %d", apperrors.ErrInvalidInput, r.ID, r.SchemaVersion, domain.SchemaVersion)
	}
	started, err := parseTime(r.StartedAt)
	if err != nil || started == nil {
		return nil, fmt.Errorf("%w: session %s started_at %q", apperrors.ErrInvalidInput, r.ID, r.StartedAt)
	}
	ended, err := parseTime(r.EndedAt)
	if err != nil {
		return nil, err
	}
	login, err := parseTime(r.LoginAt)
	if err != nil {
		return nil, err
	}
	paused, err := parseTime(r.PausedAt)
	if err != nil {
		return nil, err
	}
	restored, err := ledger.Restore(r.Ledger.Balances, r.Ledger.Postings)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", r.ID, err)
	}
	s := &domain.Session{
		ID:          r.ID,
		Identity:    r.Identity,
		StartedAt:   *started,
		EndedAt:     ended,
		Archived:    r.Archived,
		MergedFrom:  append([]string(nil), r.MergedFrom...),
		Accumulated: time.Duration(r.AccumulatedNS),
		LoginAt:     login,
		PausedAt:    paused,
		Ledger:      restored,
		Holdings:    holdings.New(),
		Items:       make(map[int64]*domain.ItemAggregate, len(r.Items)),
		Counters:    make(map[string]*domain.Counter, len(r.Counters)),
	}
	for _, h := range r.Holdings {
		for _, lot := range h.Lots {
			s.Holdings.AddLot(h.ItemID, lot.Count, lot.ValuePerUnit, lot.Bucket)
		}
	}
	for _, agg := range r.Items {
		s.Items[agg.ItemID] = &domain.ItemAggregate{
			Name:          agg.Name,
			Bucket:        agg.Bucket,
			AcquiredCount: agg.AcquiredCount,
			AcquiredValue: agg.AcquiredValue,
			DisposedCount: agg.DisposedCount,
			Proceeds:      agg.Proceeds,
		}
	}
	for name, c := range r.Counters {
		s.Counters[name] = &domain.Counter{Last: c.Last, LastMax: c.LastMax, Total: c.Total, Seen: c.Seen}
	}
	return s, nil
}

func marshalSession(s *domain.Session) ([]byte, error) {
	b, err := yaml.Marshal(toRecord(s))
	if err != nil {
		return nil, fmt.Errorf("marshal session %s: %w", s.ID, err)
	}
	return b, nil
}

// unmarshalSession checks the document against the session schema before
// decoding it.
func unmarshalSession(b []byte) (*domain.Session, error) {
	if err := validateDocument(b); err != nil {
		return nil, err
	}
	rec := sessionRecord{}
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return rec.toDomain()
}

// validateDocument converts YAML to its JSON form so the schema sees the
// same value types a JSON decoder would produce.
func validateDocument(b []byte) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert session: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("convert session: %w", err)
	}
	if err := sessionSchema.Validate(value); err != nil {
		return fmt.Errorf("%w: session document: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %q", apperrors.ErrInvalidInput, raw)
	}
	return &t, nil
}
