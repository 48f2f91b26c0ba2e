package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loziogigio/omnicommerce/pkg/logger"
)

// fakeReader serves queued messages, then blocks until ctx is canceled.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    int
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		msg := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

func encodedEvent(t *testing.T, id string) []byte {
	t.Helper()
	b, err := json.Marshal(Event{
		EventID:     id,
		EventType:   "order.confirmed",
		AggregateID: "SO-1",
		Version:     1,
		Source:      "test",
		Data:        json.RawMessage(`{"order_id": "SO-1"}`),
	})
	require.NoError(t, err)
	return b
}

func testConsumer(r messageReader, h Handler) *Consumer {
	c := newConsumer(r, "ecommerce.order.confirmed", "catalogue", h, logger.Discard())
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestConsumer_ProcessCommitsAfterSuccess(t *testing.T) {
	r := &fakeReader{}
	var got []string
	c := testConsumer(r, func(_ context.Context, e *Event) error {
		got = append(got, e.EventID)
		return nil
	})

	assert.True(t, c.process(context.Background(), kafka.Message{Offset: 7, Value: encodedEvent(t, "evt-1")}))
	assert.Equal(t, []string{"evt-1"}, got)
	assert.Equal(t, []int64{7}, r.committed)
}

func TestConsumer_PoisonMessageIsCommitted(t *testing.T) {
	r := &fakeReader{}
	calls := 0
	c := testConsumer(r, func(context.Context, *Event) error {
		calls++
		return nil
	})

	assert.True(t, c.process(context.Background(), kafka.Message{Offset: 3, Value: []byte("not json")}))
	assert.Zero(t, calls)
	assert.Equal(t, []int64{3}, r.committed)
}

func TestConsumer_RetriesThenSkips(t *testing.T) {
	r := &fakeReader{}
	calls := 0
	c := testConsumer(r, func(context.Context, *Event) error {
		calls++
		return errors.New("redis down")
	})

	assert.True(t, c.process(context.Background(), kafka.Message{Offset: 9, Value: encodedEvent(t, "evt-2")}))
	assert.Equal(t, maxHandlerRetries, calls)
	assert.Equal(t, []int64{9}, r.committed)
}

func TestConsumer_RecoversOnRetry(t *testing.T) {
	r := &fakeReader{}
	calls := 0
	c := testConsumer(r, func(context.Context, *Event) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	assert.True(t, c.process(context.Background(), kafka.Message{Offset: 1, Value: encodedEvent(t, "evt-3")}))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int64{1}, r.committed)
}

func TestConsumer_StartStopsOnCancel(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: encodedEvent(t, "a")},
		{Offset: 2, Value: encodedEvent(t, "b")},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan string, 2)
	c := testConsumer(r, func(_ context.Context, e *Event) error {
		handled <- e.EventID
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	assert.Equal(t, "a", <-handled)
	assert.Equal(t, "b", <-handled)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	require.NoError(t, c.Close())
	assert.Equal(t, 1, r.closed)
	assert.Equal(t, "ecommerce.order.confirmed", c.Topic())
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "traceparent", Value: []byte("old")}}
	c := headerCarrier{headers: &headers}

	c.Set("traceparent", "new")
	c.Set("tracestate", "k=v")

	assert.Equal(t, "new", c.Get("traceparent"))
	assert.Equal(t, "k=v", c.Get("tracestate"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "tracestate"}, c.Keys())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.Error(t, PingBrokers(context.Background(), nil))
}
