package outbox

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/persistence"
)

const pgSelectColumns = `
	id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
	occurred_at, published_at, next_retry_at, retry_count, last_error,
	dead_lettered_at, dead_letter_reason`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL outbox repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	exec := persistence.Executor(ctx, r.pool)
	for _, msg := range msgs {
		err := exec.QueryRow(ctx, `
			INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			msg.EventID, msg.AggregateType, msg.AggregateID, msg.RoutingKey,
			msg.Payload, msg.Metadata, msg.OccurredAt,
		).Scan(&msg.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) FetchPending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+pgSelectColumns+`
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= $1)
		ORDER BY id
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Message, error) {
		var m Message
		err := row.Scan(
			&m.ID, &m.EventID, &m.AggregateType, &m.AggregateID, &m.RoutingKey,
			&m.Payload, &m.Metadata, &m.OccurredAt, &m.PublishedAt, &m.NextRetryAt,
			&m.RetryCount, &m.LastError, &m.DeadLetteredAt, &m.DeadLetterReason,
		)
		return &m, err
	})
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE outbox SET published_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = $2, next_retry_at = $3
		WHERE id = $1`, id, reason, nextRetryAt)
	return err
}

func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = $2, dead_letter_reason = $2, dead_lettered_at = $3
		WHERE id = $1`, id, reason, at)
	return err
}

func (r *PostgresRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE published_at IS NULL AND dead_lettered_at IS NULL`,
	).Scan(&n)
	return n, err
}

func (r *PostgresRepository) DeleteOld(ctx context.Context, publishedBefore time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`, publishedBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
