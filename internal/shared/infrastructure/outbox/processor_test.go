package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/mealslot/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository is an in-memory outbox.Repository.
type memoryRepository struct {
	mu       sync.Mutex
	messages []*outbox.Message
	fetchErr error
}

func (r *memoryRepository) SaveBatch(_ context.Context, msgs []*outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		m.ID = int64(len(r.messages) + 1)
		r.messages = append(r.messages, m)
	}
	return nil
}

func (r *memoryRepository) FetchPending(_ context.Context, now time.Time, limit int) ([]*outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []*outbox.Message
	for _, m := range r.messages {
		if m.PublishedAt != nil || m.DeadLetteredAt != nil {
			continue
		}
		if m.NextRetryAt != nil && m.NextRetryAt.After(now) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryRepository) find(id int64) *outbox.Message {
	for _, m := range r.messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *memoryRepository) MarkPublished(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.find(id).PublishedAt = &at
	return nil
}

func (r *memoryRepository) MarkFailed(_ context.Context, id int64, reason string, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	m.RetryCount++
	m.LastError = &reason
	m.NextRetryAt = &next
	return nil
}

func (r *memoryRepository) MarkDead(_ context.Context, id int64, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	m.RetryCount++
	m.DeadLetteredAt = &at
	m.DeadLetterReason = &reason
	return nil
}

func (r *memoryRepository) CountPending(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.PublishedAt == nil && m.DeadLetteredAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) DeleteOld(context.Context, time.Time) (int64, error) { return 0, nil }

type recordingPublisher struct {
	mu     sync.Mutex
	bodies map[string][][]byte
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.bodies == nil {
		p.bodies = map[string][][]byte{}
	}
	p.bodies[routingKey] = append(p.bodies[routingKey], body)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func seededRepo(t *testing.T, n int) *memoryRepository {
	t.Helper()
	repo := &memoryRepository{}
	for i := 0; i < n; i++ {
		msg, err := outbox.NewMessage(newSlotMovedEvent(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
		require.NoError(t, repo.SaveBatch(context.Background(), []*outbox.Message{msg}))
	}
	return repo
}

func TestProcessor_PublishesPendingMessages(t *testing.T) {
	repo := seededRepo(t, 3)
	pub := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	now := time.Date(2024, 6, 1, 15, 0, 30, 0, time.UTC)
	p := outbox.NewProcessor(repo, pub, outbox.DefaultProcessorConfig(), nil,
		outbox.WithMetrics(metrics),
		outbox.WithClock(func() time.Time { return now }),
	)

	published, err := p.ProcessOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, published)
	assert.Len(t, pub.bodies["delivery.slot.rescheduled"], 3)
	assert.Equal(t, int64(3), metrics.GetCounter(observability.MetricOutboxPublished,
		observability.T("routing_key", "delivery.slot.rescheduled")))
	assert.Equal(t, 30.0, metrics.GetGauge(observability.MetricOutboxLag))

	pending, _ := repo.CountPending(context.Background())
	assert.Zero(t, pending)
	assert.Equal(t, uint64(3), p.GetStats().PublishedCount)
}

func TestProcessor_RetriesWithBackoffThenDeadLetters(t *testing.T) {
	repo := seededRepo(t, 1)
	pub := &recordingPublisher{err: errors.New("broker down")}
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	cfg := outbox.DefaultProcessorConfig()
	cfg.MaxRetries = 2
	p := outbox.NewProcessor(repo, pub, cfg, nil, outbox.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := p.ProcessOnce(ctx)
	require.NoError(t, err)

	msg := repo.messages[0]
	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.NextRetryAt)
	assert.Equal(t, now.Add(time.Second), *msg.NextRetryAt)
	assert.Nil(t, msg.DeadLetteredAt)

	// Not due yet.
	published, err := p.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
	assert.Equal(t, 1, msg.RetryCount)

	now = now.Add(2 * time.Second)
	_, err = p.ProcessOnce(ctx)
	require.NoError(t, err)

	require.NotNil(t, msg.DeadLetteredAt)
	assert.Equal(t, "broker down", *msg.DeadLetterReason)
	stats := p.GetStats()
	assert.Equal(t, uint64(1), stats.FailedCount)
	assert.Equal(t, uint64(1), stats.DeadCount)
	assert.Equal(t, "broker down", stats.LastError)
}

func TestProcessor_FetchErrorIsReported(t *testing.T) {
	repo := &memoryRepository{fetchErr: errors.New("db gone")}
	p := outbox.NewProcessor(repo, &recordingPublisher{}, outbox.DefaultProcessorConfig(), nil)

	_, err := p.ProcessOnce(context.Background())

	assert.EqualError(t, err, "db gone")
	assert.Equal(t, "db gone", p.GetStats().LastError)
}

func TestProcessor_StartStop(t *testing.T) {
	repo := seededRepo(t, 1)
	pub := &recordingPublisher{}
	cfg := outbox.DefaultProcessorConfig()
	cfg.PollInterval = 5 * time.Millisecond
	p := outbox.NewProcessor(repo, pub, cfg, nil)

	p.Start(context.Background())
	p.Start(context.Background())
	assert.True(t, p.IsRunning())

	assert.Eventually(t, func() bool {
		n, _ := repo.CountPending(context.Background())
		return n == 0
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()
	assert.False(t, p.IsRunning())
}
