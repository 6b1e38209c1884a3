package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"benefits-bff/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	mu        sync.Mutex
	pending   []postgres.OutboxEntry
	published []postgres.OutboxEntry
}

func (f *fakeOutbox) PublishPending(ctx context.Context, limit int, publish func(context.Context, []postgres.OutboxEntry) error) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := min(limit, len(f.pending))
	if n == 0 {
		return 0, nil
	}
	batch := append([]postgres.OutboxEntry{}, f.pending[:n]...)
	if err := publish(ctx, batch); err != nil {
		return 0, err
	}
	f.pending = f.pending[n:]
	f.published = append(f.published, batch...)
	return n, nil
}

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func entries(n int) []postgres.OutboxEntry {
	out := make([]postgres.OutboxEntry, n)
	for i := range out {
		out[i] = postgres.OutboxEntry{
			ID:         string(rune('a' + i)),
			Action:     "enrollment_created",
			CustomerID: "cust-1",
			Payload:    []byte(`{}`),
		}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelay_DrainPublishesAllBatches(t *testing.T) {
	outbox := &fakeOutbox{pending: entries(5)}
	producer := &fakeProducer{}
	relay := NewRelay(outbox, producer, "enrollment-audit", WithBatchSize(2), WithLogger(quietLogger()))

	n, err := relay.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Empty(t, outbox.pending)
	require.Len(t, producer.records, 5)

	rec := producer.records[0]
	assert.Equal(t, "enrollment-audit", rec.Topic)
	assert.Equal(t, []byte("cust-1"), rec.Key)
	assert.Equal(t, "event_id", rec.Headers[0].Key)
}

func TestRelay_ProduceFailureLeavesRowsPending(t *testing.T) {
	outbox := &fakeOutbox{pending: entries(3)}
	producer := &fakeProducer{err: errors.New("broker down")}
	relay := NewRelay(outbox, producer, "t", WithLogger(quietLogger()))

	n, err := relay.Drain(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Len(t, outbox.pending, 3)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	outbox := &fakeOutbox{pending: entries(1)}
	producer := &fakeProducer{}
	relay := NewRelay(outbox, producer, "t", WithInterval(10*time.Millisecond), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		outbox.mu.Lock()
		defer outbox.mu.Unlock()
		return len(outbox.published) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
