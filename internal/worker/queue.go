// Package worker drains the catalog event outbox through the pipeline.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"petfood/internal/infra"
	"petfood/internal/sqlinline"
)

// Status is the terminal state recorded on an event row.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// ErrNoEvent is returned by Claim when nothing is ready.
var ErrNoEvent = errors.New("no event available")

// Event is a claimed outbox row.
type Event struct {
	ID       string
	Envelope []byte
	Attempts int
}

// Queue is the outbox the worker consumes.
type Queue interface {
	Claim(ctx context.Context) (Event, error)
	Complete(ctx context.Context, id string, status Status, result []byte, errMsg string) error
	Requeue(ctx context.Context, id string, delay time.Duration, errMsg string) error
	ResetStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PostgresQueue stores events in catalog_events. Claims use
// FOR UPDATE SKIP LOCKED so several workers can share the table.
type PostgresQueue struct {
	db infra.SQLExecutor
}

// NewPostgresQueue wraps db.
func NewPostgresQueue(db infra.SQLExecutor) *PostgresQueue {
	return &PostgresQueue{db: db}
}

// Enqueue stores envelope as a pending event and returns its id.
func (q *PostgresQueue) Enqueue(ctx context.Context, envelope map[string]any) (string, error) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	var id string
	if err := q.db.QueryRow(ctx, sqlinline.QEventsEnqueue, uuid.NewString(), raw).Scan(&id); err != nil {
		return "", fmt.Errorf("enqueue event: %w", err)
	}
	return id, nil
}

func (q *PostgresQueue) Claim(ctx context.Context) (Event, error) {
	var ev Event
	err := q.db.QueryRow(ctx, sqlinline.QEventsClaimNext).Scan(&ev.ID, &ev.Envelope, &ev.Attempts)
	if err != nil {
		if infra.IsNoRows(err) {
			return Event{}, ErrNoEvent
		}
		return Event{}, fmt.Errorf("claim event: %w", err)
	}
	ev.Envelope = append([]byte(nil), ev.Envelope...)
	return ev, nil
}

func (q *PostgresQueue) Complete(ctx context.Context, id string, status Status, result []byte, errMsg string) error {
	if _, err := q.db.Exec(ctx, sqlinline.QEventsComplete, id, string(status), result, errMsg); err != nil {
		return fmt.Errorf("complete event %s: %w", id, err)
	}
	return nil
}

func (q *PostgresQueue) Requeue(ctx context.Context, id string, delay time.Duration, errMsg string) error {
	if _, err := q.db.Exec(ctx, sqlinline.QEventsRequeue, id, delay.Seconds(), errMsg); err != nil {
		return fmt.Errorf("requeue event %s: %w", id, err)
	}
	return nil
}

func (q *PostgresQueue) ResetStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := q.db.Exec(ctx, sqlinline.QEventsResetStale, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("reset stale events: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ Queue = (*PostgresQueue)(nil)
