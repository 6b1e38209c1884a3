package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "benefits-bff/pkg/domain"
	audit "benefits-bff/pkg/platform/audit"
	txcontext "benefits-bff/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events land in audit_outbox and are published to Kafka by the outbox relay.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// OutboxEntry is one unpublished row handed to the relay.
type OutboxEntry struct {
	ID         string
	Action     string
	CustomerID string
	Payload    []byte
}

// outboxPayload is the JSON document published to Kafka.
type outboxPayload struct {
	ID           string            `json:"id"`
	Category     string            `json:"category"`
	Timestamp    string            `json:"timestamp"`
	CustomerID   string            `json:"customerId"`
	EnrollmentID string            `json:"enrollmentId"`
	Action       string            `json:"action"`
	RequestID    string            `json:"requestId,omitempty"`
	ClientApp    string            `json:"clientApp,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
}

// Append writes an audit event to the outbox. It joins the transaction in ctx
// when there is one.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	// the action map is the source of truth for category
	category := audit.AuditEvent(event.Action).Category()

	payload, err := json.Marshal(outboxPayload{
		ID:           eventID,
		Category:     string(category),
		Timestamp:    event.Timestamp.UTC().Format(time.RFC3339Nano),
		CustomerID:   event.CustomerID.String(),
		EnrollmentID: event.Subject.String(),
		Action:       event.Action,
		RequestID:    event.RequestID,
		ClientApp:    event.ClientApp,
		Details:      event.Details,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, action, subject, customer_id, request_id, client_app, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		eventID,
		event.Action,
		event.Subject.String(),
		event.CustomerID.String(),
		event.RequestID,
		event.ClientApp,
		payload,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByCustomer returns a customer's events, oldest first.
func (s *Store) ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM audit_outbox
		WHERE customer_id = $1
		ORDER BY occurred_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, customerID.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event, err := decodePayload(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// PublishPending locks up to limit unpublished rows, hands them to publish and
// marks them published when publish succeeds. A publish error rolls the batch
// back so the rows are retried on the next call. Concurrent relays skip rows
// locked by each other.
func (s *Store) PublishPending(ctx context.Context, limit int, publish func(context.Context, []OutboxEntry) error) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, action, customer_id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY occurred_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("select pending outbox: %w", err)
	}
	var batch []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.CustomerID, &e.Payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox entry: %w", err)
		}
		batch = append(batch, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := publish(ctx, batch); err != nil {
		return 0, err
	}

	ids := make([]string, len(batch))
	for i, e := range batch {
		ids[i] = e.ID
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE audit_outbox SET published_at = now() WHERE id = ANY($1::uuid[])`,
		pq.Array(ids),
	); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}
	return len(batch), nil
}

func decodePayload(raw []byte) (audit.Event, error) {
	var p outboxPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("decode audit timestamp: %w", err)
	}
	return audit.Event{
		ID:         p.ID,
		Category:   audit.EventCategory(p.Category),
		Timestamp:  ts,
		CustomerID: id.CustomerID(p.CustomerID),
		Subject:    id.EnrollmentID(p.EnrollmentID),
		Action:     p.Action,
		RequestID:  p.RequestID,
		ClientApp:  p.ClientApp,
		Details:    p.Details,
	}, nil
}
