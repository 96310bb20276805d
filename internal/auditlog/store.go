// Package auditlog persists one row per gate decision so tenants can
// see why their bot refused to answer from documents.
package auditlog

// #region imports
import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/guestflow/ragcore/internal/gate"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS gate_outcomes (
	request_id      TEXT PRIMARY KEY,
	tenant_id       TEXT NOT NULL,
	user_message    TEXT NOT NULL,
	passed          INTEGER NOT NULL,
	reason          TEXT NOT NULL,
	query_type      TEXT,
	lang            TEXT,
	best_similarity REAL,
	context_len     INTEGER,
	overlap         REAL,
	key_tokens      INTEGER,
	top_k_used      INTEGER,
	created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_gate_outcomes_tenant
	ON gate_outcomes (tenant_id, created_at);
`

// #endregion schema

// #region store

// Store writes gate outcomes to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region entry

// Entry is one logged gate decision. Metric fields mirror the gate
// outcome: absent metrics stay NULL in the row, never zero.
type Entry struct {
	RequestID   string
	TenantID    string
	UserMessage string
	Outcome     gate.Outcome
	CreatedAt   time.Time
}

// NewEntry stamps a fresh request id and timestamp.
func NewEntry(tenantID, userMessage string, outcome gate.Outcome) Entry {
	return Entry{
		RequestID:   uuid.New().String(),
		TenantID:    tenantID,
		UserMessage: userMessage,
		Outcome:     outcome,
		CreatedAt:   time.Now().UTC(),
	}
}

// #endregion entry

// #region log

// Log inserts one gate outcome row.
func (s *Store) Log(ctx context.Context, e Entry) error {
	out := e.Outcome

	var bestSim, overlap sql.NullFloat64
	if out.HasBestSim {
		bestSim = sql.NullFloat64{Float64: out.BestSim, Valid: true}
	}
	if out.HasOverlap {
		overlap = sql.NullFloat64{Float64: out.Overlap, Valid: true}
	}
	var keyTokens sql.NullInt64
	if out.HasKeyTokens {
		keyTokens = sql.NullInt64{Int64: int64(out.KeyTokens), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gate_outcomes
		 (request_id, tenant_id, user_message, passed, reason, query_type, lang,
		  best_similarity, context_len, overlap, key_tokens, top_k_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.TenantID, e.UserMessage, out.Passed, out.Reason.String(),
		string(out.QueryType), string(out.Lang),
		bestSim, out.ContextLen, overlap, keyTokens, out.TopKUsed,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert gate outcome: %w", err)
	}
	return nil
}

// #endregion log

// #region stats

// Stats aggregates a tenant's recent gate outcomes.
type Stats struct {
	Total        int
	Passed       int
	ReasonCounts map[string]int
}

// PassRate returns the fraction of passed outcomes, 0 when empty.
func (st Stats) PassRate() float64 {
	if st.Total == 0 {
		return 0
	}
	return float64(st.Passed) / float64(st.Total)
}

// Stats returns outcome counts for a tenant since the given time.
func (s *Store) Stats(ctx context.Context, tenantID string, since time.Time) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT passed, reason FROM gate_outcomes
		 WHERE tenant_id = ? AND created_at >= ?`,
		tenantID, since.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Stats{}, fmt.Errorf("query gate outcomes: %w", err)
	}
	defer rows.Close()

	st := Stats{ReasonCounts: make(map[string]int)}
	for rows.Next() {
		var passed bool
		var reason string
		if err := rows.Scan(&passed, &reason); err != nil {
			return Stats{}, fmt.Errorf("scan gate outcome: %w", err)
		}
		st.Total++
		if passed {
			st.Passed++
		}
		st.ReasonCounts[reason]++
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate gate outcomes: %w", err)
	}
	return st, nil
}

// #endregion stats
