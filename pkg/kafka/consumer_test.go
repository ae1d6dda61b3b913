package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"staybook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{messages: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{} }
func (r *fakeReader) Close() error             { return nil }

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-r.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain messages")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start returned %v, want context.Canceled", err)
	}
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestConsumer_CommitsHandledMessages(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "ledger", Offset: 1, Key: []byte("1"), Value: []byte(`{}`)},
		kafka.Message{Topic: "ledger", Offset: 2, Key: []byte("2"), Value: []byte(`{}`)},
	)
	var seen []string
	handler := func(ctx context.Context, msg Message) error {
		seen = append(seen, msg.Key)
		return nil
	}
	c := newConsumer(reader, nil, "ledger", "group", 3, 0, handler, testLogger())

	runUntilDrained(t, c, reader)

	if len(seen) != 2 || seen[0] != "1" || seen[1] != "2" {
		t.Errorf("handled keys = %v", seen)
	}
	if len(reader.committed) != 2 {
		t.Errorf("committed = %v", reader.committed)
	}
}

func TestConsumer_RetriesTransientErrors(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "ledger", Offset: 7, Key: []byte("k"), Value: []byte(`{}`)})
	attempts := 0
	handler := func(ctx context.Context, msg Message) error {
		attempts++
		if attempts < 3 {
			return NewTransientError("store unavailable", errors.New("connection refused"))
		}
		return nil
	}
	dlq := &fakeWriter{}
	c := newConsumer(reader, dlq, "ledger", "group", 3, 0, handler, testLogger())

	runUntilDrained(t, c, reader)

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(dlq.messages) != 0 {
		t.Errorf("expected no DLQ messages, got %d", len(dlq.messages))
	}
	if len(reader.committed) != 1 {
		t.Errorf("committed = %v", reader.committed)
	}
}

func TestConsumer_PermanentErrorGoesToDLQ(t *testing.T) {
	reader := newFakeReader(kafka.Message{
		Topic:   "ledger",
		Offset:  9,
		Key:     []byte("k"),
		Value:   []byte(`not json`),
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte("booking.booked")}},
	})
	attempts := 0
	handler := func(ctx context.Context, msg Message) error {
		attempts++
		return NewPermanentError("decode", errors.New("bad payload"))
	}
	dlq := &fakeWriter{}
	c := newConsumer(reader, dlq, "ledger", "group", 3, 0, handler, testLogger())

	runUntilDrained(t, c, reader)

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected one DLQ message, got %d", len(dlq.messages))
	}
	parked := dlq.messages[0]
	if got := headerValue(parked, HeaderOriginalTopic); got != "ledger" {
		t.Errorf("original topic = %q", got)
	}
	if got := headerValue(parked, HeaderDLQGroup); got != "group" {
		t.Errorf("consumer group = %q", got)
	}
	if got := headerValue(parked, HeaderEventType); got != "booking.booked" {
		t.Errorf("event type = %q", got)
	}
	if headerValue(parked, HeaderDLQError) == "" {
		t.Error("expected dlq-error header")
	}
	if len(reader.committed) != 1 {
		t.Errorf("dead-lettered message should be committed, got %v", reader.committed)
	}
}

func startUntilStopped(t *testing.T, c *Consumer) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.Start(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("consumer kept running after an unprocessable message")
	}
	return err
}

func TestConsumer_ExhaustedRetriesWithoutDLQLeaveOffset(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "ledger", Offset: 3, Key: []byte("fails"), Value: []byte(`{}`)},
		kafka.Message{Topic: "ledger", Offset: 4, Key: []byte("ok"), Value: []byte(`{}`)},
	)
	var seen []string
	handler := func(ctx context.Context, msg Message) error {
		seen = append(seen, msg.Key)
		if msg.Key == "fails" {
			return NewTransientError("store unavailable", nil)
		}
		return nil
	}
	c := newConsumer(reader, nil, "ledger", "group", 2, 0, handler, testLogger())

	err := startUntilStopped(t, c)

	if !errors.Is(err, ErrMessageNotProcessed) {
		t.Fatalf("Start = %v, want ErrMessageNotProcessed", err)
	}
	if len(seen) != 3 {
		t.Errorf("handler calls = %v, want three attempts on the failing message only", seen)
	}
	if len(reader.committed) != 0 {
		t.Errorf("expected no commit, got %v", reader.committed)
	}
}

func TestConsumer_DLQFailureStopsBeforeLaterOffsets(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "ledger", Offset: 1, Key: []byte("1"), Value: []byte(`{}`)},
		kafka.Message{Topic: "ledger", Offset: 2, Key: []byte("2"), Value: []byte(`{}`)},
	)
	handler := func(ctx context.Context, msg Message) error {
		if msg.Offset == 1 {
			return NewTransientError("store unavailable", nil)
		}
		return nil
	}
	dlq := &fakeWriter{err: errors.New("broker down")}
	c := newConsumer(reader, dlq, "ledger", "group", 1, 0, handler, testLogger())

	err := startUntilStopped(t, c)

	if !errors.Is(err, ErrMessageNotProcessed) {
		t.Fatalf("Start = %v, want ErrMessageNotProcessed", err)
	}
	if len(reader.committed) != 0 {
		t.Errorf("offset 2 must not be committed past the failed offset 1, got %v", reader.committed)
	}
	if len(reader.messages) != 1 || reader.messages[0].Offset != 2 {
		t.Errorf("offset 2 should still be unread, remaining = %d", len(reader.messages))
	}
}

func TestConsumer_MiddlewareOrder(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "ledger", Offset: 1, Key: []byte("k"), Value: []byte(`{}`)})
	var order []string
	handler := func(ctx context.Context, msg Message) error {
		order = append(order, "handler")
		return nil
	}
	c := newConsumer(reader, nil, "ledger", "group", 0, 0, handler, testLogger())
	for _, name := range []string{"first", "second"} {
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	runUntilDrained(t, c, reader)

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestConsumer_StartAfterClose(t *testing.T) {
	c := newConsumer(newFakeReader(), nil, "ledger", "group", 0, 0, func(context.Context, Message) error { return nil }, testLogger())
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrConsumerClosed) {
		t.Errorf("Start = %v, want ErrConsumerClosed", err)
	}
}
