package amqp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spesa/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped at 30s
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"closed connection", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isConnectionError(tt.err))
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	t.Run("initial state is closed", func(t *testing.T) {
		assert.False(t, client.isCircuitOpen())
	})

	t.Run("record success resets state", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 3)
		atomic.StoreInt32(&client.state, StateOpen)

		client.recordSuccess()

		assert.False(t, client.isCircuitOpen())
		assert.Zero(t, atomic.LoadInt64(&client.failureCount))
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		assert.True(t, client.isCircuitOpen())
	})

	t.Run("circuit transitions to half-open after timeout", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)

		assert.False(t, client.isCircuitOpen())
		assert.Equal(t, StateHalfOpen, atomic.LoadInt32(&client.state))
	})
}

func TestClient_PublishChange_FailsFast(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	t.Run("circuit open", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishChange(context.Background(), NewChangeEvent(ExpenseCreated, "2024-03"))
		assert.ErrorIs(t, err, ErrCircuitOpen)
	})

	t.Run("cancelled context", func(t *testing.T) {
		client.recordSuccess()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := client.PublishChange(ctx, NewChangeEvent(ExpenseCreated))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestChangeEventJSON(t *testing.T) {
	ev := NewChangeEvent(CategoryDeleted, "2024-03", "2024-03", "2024-02")
	ev.CategoryID = 5
	assert.Equal(t, []string{"2024-03", "2024-02"}, ev.Periods)

	raw, err := ev.ToJSON()
	require.NoError(t, err)

	back, err := ChangeEventFromJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, CategoryDeleted, back.Type)
	assert.Equal(t, int64(5), back.CategoryID)
	assert.True(t, back.Timestamp.Equal(ev.Timestamp))

	_, err = ChangeEventFromJSON([]byte(`{"type":"expense.exploded"}`))
	assert.Error(t, err)
	_, err = ChangeEventFromJSON([]byte(`{"type":`))
	assert.Error(t, err)
}

type fakeAck struct {
	acked, nacked, requeued bool
	err                     error
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return f.err }
func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return f.err
}

func TestHandleAcknowledgement(t *testing.T) {
	ctx := context.Background()
	good, _ := NewChangeEvent(ExpenseCreated, "2024-03").ToJSON()

	t.Run("success acks", func(t *testing.T) {
		a := &fakeAck{}
		handle(ctx, log.Discard(), a, good, func(context.Context, *ChangeEvent) error { return nil })
		assert.True(t, a.acked)
		assert.False(t, a.nacked)
	})

	t.Run("handler error requeues", func(t *testing.T) {
		a := &fakeAck{}
		handle(ctx, log.Discard(), a, good, func(context.Context, *ChangeEvent) error { return errors.New("sheets down") })
		assert.True(t, a.nacked)
		assert.True(t, a.requeued)
	})

	t.Run("malformed body dropped", func(t *testing.T) {
		a := &fakeAck{}
		called := false
		handle(ctx, log.Discard(), a, []byte("nope"), func(context.Context, *ChangeEvent) error { called = true; return nil })
		assert.False(t, called)
		assert.True(t, a.nacked)
		assert.False(t, a.requeued)
	})

	t.Run("acknowledgement failures are logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)})

		a := &fakeAck{err: amqp091.ErrClosed}
		handle(ctx, logger, a, good, func(context.Context, *ChangeEvent) error { return nil })
		assert.True(t, a.acked)
		assert.Contains(t, buf.String(), "Failed to ack message")
		assert.NotContains(t, buf.String(), "Processed change event")

		buf.Reset()
		a = &fakeAck{err: amqp091.ErrClosed}
		handle(ctx, logger, a, good, func(context.Context, *ChangeEvent) error { return errors.New("sheets down") })
		assert.True(t, a.requeued)
		assert.Contains(t, buf.String(), "Failed to nack message")
	})
}

func TestReconnectDialsWithoutChannel(t *testing.T) {
	client := &Client{url: "amqp://127.0.0.1:1/", logger: log.Discard()}

	// Nothing to reuse, so reconnect dials and fails against a closed port.
	err := client.reconnect(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial AMQP")
	assert.Nil(t, client.currentChannel())
}

func TestClientIntegration(t *testing.T) {
	url := os.Getenv("SPESA_TEST_AMQP_URL")
	if url == "" {
		t.Skip("SPESA_TEST_AMQP_URL not set")
	}
	queue := fmt.Sprintf("spesa_test_%d", time.Now().UnixNano())
	client, err := NewClient(url, "spesa_test", queue, log.Discard())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, client.PublishChange(ctx, NewChangeEvent(MappingUpserted)))

	got := make(chan *ChangeEvent, 1)
	go client.ConsumeChanges(ctx, func(_ context.Context, ev *ChangeEvent) error {
		got <- ev
		return nil
	})

	select {
	case ev := <-got:
		assert.Equal(t, MappingUpserted, ev.Type)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestReconnectReplacesAndClosesStaleChannel(t *testing.T) {
	url := os.Getenv("SPESA_TEST_AMQP_URL")
	if url == "" {
		t.Skip("SPESA_TEST_AMQP_URL not set")
	}
	queue := fmt.Sprintf("spesa_test_%d", time.Now().UnixNano())
	client, err := NewClient(url, "spesa_test", queue, log.Discard())
	require.NoError(t, err)
	defer client.Close()

	stale := client.currentChannel()
	require.NoError(t, client.reconnect(stale))
	fresh := client.currentChannel()
	assert.NotSame(t, stale, fresh)
	assert.True(t, stale.IsClosed())

	// A second caller holding the same stale channel reuses the fresh one.
	require.NoError(t, client.reconnect(stale))
	assert.Same(t, fresh, client.currentChannel())
	assert.False(t, fresh.IsClosed())
}
