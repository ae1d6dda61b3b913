package mongo

import (
	"context"
	"testing"
	"time"
)

func TestWithTimeout(t *testing.T) {
	t.Run("applies timeout without deadline", func(t *testing.T) {
		ctx, cancel := WithTimeout(context.Background(), time.Second)
		defer cancel()

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatalf("expected a deadline")
		}
		if time.Until(deadline) > time.Second {
			t.Errorf("deadline too far: %s", time.Until(deadline))
		}
	})

	t.Run("keeps earlier parent deadline", func(t *testing.T) {
		parent, parentCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer parentCancel()

		ctx, cancel := WithTimeout(parent, time.Hour)
		defer cancel()

		deadline, _ := ctx.Deadline()
		if time.Until(deadline) > 50*time.Millisecond {
			t.Errorf("expected parent deadline to win, got %s", time.Until(deadline))
		}
	})
}
