// Package journal keeps an append-only sqlite record of station runs for
// inspection after the fact. Nothing here is ever read back into a running
// session.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/ox500/internal/bus"
	"github.com/nvandessel/ox500/internal/models"
)

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Session is one journaled session with its record counts.
type Session struct {
	ID          string    `json:"id"`
	Seed        uint32    `json:"seed"`
	StartedAt   time.Time `json:"started_at"`
	Transitions int       `json:"transitions"`
	Effects     int       `json:"effects"`
}

// Transition is one journaled phase change.
type Transition struct {
	SessionID string       `json:"session_id"`
	From      models.Phase `json:"from"`
	To        models.Phase `json:"to"`
	Pressure  float64      `json:"pressure"`
	At        time.Time    `json:"at"`
}

// Effect is one journaled anomaly.
type Effect struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	RecipeID  string           `json:"recipe_id"`
	Key       models.EffectKey `json:"effect_key"`
	FiredAt   time.Time        `json:"fired_at"`
	Duration  time.Duration    `json:"duration"`
}

// Journal is a sqlite-backed run journal. It is safe for concurrent use.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens or creates the journal at path. ":memory:" opens a private
// in-memory journal.
func Open(path string) (*Journal, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return &Journal{db: db, path: path}, nil
}

// Path returns the path the journal was opened with.
func (j *Journal) Path() string { return j.path }

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginSession records the start of a session.
func (j *Journal) BeginSession(ctx context.Context, id string, seed uint32, startedAt time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, seed, started_at) VALUES (?, ?, ?)`,
		id, int64(seed), startedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to begin session %s: %w", id, err)
	}
	return nil
}

// RecordTransition appends a phase change.
func (j *Journal) RecordTransition(ctx context.Context, t Transition) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transitions (session_id, from_phase, to_phase, pressure, at) VALUES (?, ?, ?, ?, ?)`,
		t.SessionID, string(t.From), string(t.To), t.Pressure, t.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// RecordEffect appends an applied anomaly. An empty ID is filled in.
func (j *Journal) RecordEffect(ctx context.Context, e Effect) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO effects (id, session_id, recipe_id, effect_key, fired_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.RecipeID, string(e.Key), e.FiredAt.UTC().Format(timeLayout), e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record effect: %w", err)
	}
	return nil
}

// Sessions lists journaled sessions, newest first.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT s.id, s.seed, s.started_at,
       (SELECT COUNT(*) FROM transitions t WHERE t.session_id = s.id),
       (SELECT COUNT(*) FROM effects e WHERE e.session_id = s.id)
FROM sessions s
ORDER BY s.started_at DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			s       Session
			seed    int64
			started string
		)
		if err := rows.Scan(&s.ID, &seed, &started, &s.Transitions, &s.Effects); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Seed = uint32(seed)
		if s.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("session %s: bad started_at %q: %w", s.ID, started, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Transitions returns the phase changes of a session in order.
func (j *Journal) Transitions(ctx context.Context, sessionID string) ([]Transition, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT from_phase, to_phase, pressure, at FROM transitions WHERE session_id = ? ORDER BY at, id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var from, to, at string
		t := Transition{SessionID: sessionID}
		if err := rows.Scan(&from, &to, &t.Pressure, &at); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		t.From, t.To = models.Phase(from), models.Phase(to)
		if t.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("bad transition time %q: %w", at, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Effects returns the anomalies of a session in firing order.
func (j *Journal) Effects(ctx context.Context, sessionID string) ([]Effect, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, recipe_id, effect_key, fired_at, duration_ms FROM effects WHERE session_id = ? ORDER BY fired_at, rowid`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list effects: %w", err)
	}
	defer rows.Close()

	var out []Effect
	for rows.Next() {
		var (
			key, at string
			ms      int64
		)
		e := Effect{SessionID: sessionID}
		if err := rows.Scan(&e.ID, &e.RecipeID, &key, &at, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan effect: %w", err)
		}
		e.Key = models.EffectKey(key)
		e.Duration = time.Duration(ms) * time.Millisecond
		if e.FiredAt, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("bad effect time %q: %w", at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Attach records the session's phase changes and fired effects from b. Write
// failures are logged and never reach the session. The returned func detaches.
func (j *Journal) Attach(b *bus.Bus, sessionID string, logger *slog.Logger) (detach func()) {
	ctx := context.Background()
	unsubPhase := b.Subscribe(bus.TopicSystemPhase, func(ev bus.Event) {
		p, ok := bus.Payload[bus.PhasePayload](ev)
		if !ok || p.Phase == p.Previous {
			return
		}
		err := j.RecordTransition(ctx, Transition{
			SessionID: sessionID,
			From:      p.Previous,
			To:        p.Phase,
			Pressure:  p.Pressure,
			At:        p.At,
		})
		if err != nil {
			logger.Warn("journal write failed", "error", err)
		}
	})
	unsubFire := b.Subscribe(bus.TopicAnomalyFire, func(ev bus.Event) {
		p, ok := bus.Payload[bus.FirePayload](ev)
		if !ok {
			return
		}
		err := j.RecordEffect(ctx, Effect{
			SessionID: sessionID,
			RecipeID:  p.RecipeID,
			Key:       p.Key,
			FiredAt:   p.At,
			Duration:  p.Duration,
		})
		if err != nil {
			logger.Warn("journal write failed", "error", err)
		}
	})
	return func() {
		unsubPhase()
		unsubFire()
	}
}
