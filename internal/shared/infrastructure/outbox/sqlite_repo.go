package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
)

// SQLiteRepository implements Repository for local mode.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	exec := persistence.SQLiteExecutor(ctx, r.db)
	for _, msg := range msgs {
		res, err := exec.ExecContext(ctx, `
			INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, occurred_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.EventID.String(), msg.AggregateType, msg.AggregateID.String(), msg.RoutingKey,
			string(msg.Payload), string(msg.Metadata), persistence.FormatSQLiteTime(msg.OccurredAt),
		)
		if err != nil {
			return err
		}
		if msg.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) FetchPending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
		       occurred_at, next_retry_at, retry_count, last_error
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`, persistence.FormatSQLiteTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var (
			m                        Message
			eventID, aggregateID     string
			payload, metadata        string
			occurredAt               string
			nextRetryAt, lastErrText sql.NullString
		)
		if err := rows.Scan(&m.ID, &eventID, &m.AggregateType, &aggregateID, &m.RoutingKey,
			&payload, &metadata, &occurredAt, &nextRetryAt, &m.RetryCount, &lastErrText); err != nil {
			return nil, err
		}
		if m.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("outbox %d: %w", m.ID, err)
		}
		if m.AggregateID, err = uuid.Parse(aggregateID); err != nil {
			return nil, fmt.Errorf("outbox %d: %w", m.ID, err)
		}
		if m.OccurredAt, err = persistence.ParseSQLiteTime(occurredAt); err != nil {
			return nil, err
		}
		if m.NextRetryAt, err = persistence.ParseSQLiteTimePtr(nextRetryAt); err != nil {
			return nil, err
		}
		if lastErrText.Valid {
			m.LastError = &lastErrText.String
		}
		m.Payload = []byte(payload)
		m.Metadata = []byte(metadata)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET published_at = ? WHERE id = ?`,
		persistence.FormatSQLiteTime(at), id)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`, reason, persistence.FormatSQLiteTime(nextRetryAt), id)
	return err
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, dead_letter_reason = ?, dead_lettered_at = ?
		WHERE id = ?`, reason, reason, persistence.FormatSQLiteTime(at), id)
	return err
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbox WHERE published_at IS NULL AND dead_lettered_at IS NULL`,
	).Scan(&n)
	return n, err
}

func (r *SQLiteRepository) DeleteOld(ctx context.Context, publishedBefore time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		persistence.FormatSQLiteTime(publishedBefore))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
