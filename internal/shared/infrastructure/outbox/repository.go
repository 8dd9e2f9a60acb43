package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. Save operations join the unit of
// work carried by ctx; relay operations run on their own.
type Repository interface {
	// SaveBatch stores messages and assigns their IDs.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// FetchPending returns unpublished, live messages due at now, oldest first.
	FetchPending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed bumps the retry count and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error

	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// CountPending counts unpublished, live messages regardless of schedule.
	CountPending(ctx context.Context) (int64, error)

	// DeleteOld removes messages published before the cutoff.
	DeleteOld(ctx context.Context, publishedBefore time.Time) (int64, error)
}
