package kafka

import (
	"context"
	"errors"
	"testing"
)

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "ledger")

	msg, err := NewMessage().
		WithKey("42").
		WithValue(map[string]int{"booking_id": 42}).
		WithEventType("booking.booked").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var seenTopic string
	p.Use(func(ctx context.Context, m Message, next MessageHandler) error {
		seenTopic = m.Topic
		return next(ctx, m)
	})

	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if seenTopic != "ledger" {
		t.Errorf("middleware saw topic %q", seenTopic)
	}
	if len(w.messages) != 1 {
		t.Fatalf("written = %d", len(w.messages))
	}
	if string(w.messages[0].Key) != "42" || string(w.messages[0].Value) != `{"booking_id":42}` {
		t.Errorf("unexpected message: %s=%s", w.messages[0].Key, w.messages[0].Value)
	}
	if headerValue(w.messages[0], HeaderEventID) == "" {
		t.Error("expected generated event id")
	}
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, "ledger")
	ctx := context.Background()

	if err := p.Publish(ctx, Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Publish without key = %v", err)
	}
	if err := p.Publish(ctx, Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("Publish without value = %v", err)
	}
	if err := p.PublishBatch(ctx, nil); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("empty batch = %v", err)
	}
	err := p.PublishBatch(ctx, []Message{{Key: "a", Value: []byte("1")}, {Value: []byte("2")}})
	if !errors.Is(err, ErrEmptyKey) {
		t.Errorf("batch with missing key = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Publish(ctx, Message{Key: "k", Value: []byte("v")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("Publish after close = %v", err)
	}
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "ledger")

	err := p.PublishBatch(context.Background(), []Message{
		{Key: "1", Value: []byte("a")},
		{Key: "2", Value: []byte("b")},
	})
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	if len(w.messages) != 2 {
		t.Errorf("written = %d", len(w.messages))
	}
}

func TestProducer_WriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&fakeWriter{err: boom}, "ledger")
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}); !errors.Is(err, boom) {
		t.Errorf("Publish = %v, want %v", err, boom)
	}
}
