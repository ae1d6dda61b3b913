// Package replay loads ledger fixtures and turns them into ledger topic
// messages or an in-memory reconciliation.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"staybook/internal/eventlog/repository"
	"staybook/internal/ingest"
	"staybook/internal/ledger"
	"staybook/pkg/calendar"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const Source = "staybook-replay"

var eventIDNamespace = uuid.MustParse("3f6c1b2e-8a51-4c1d-9d8e-2b7a4f0c6e19")

// EventID is stable for a given ledger log entry, so republishing a fixture
// produces the same message ids.
func EventID(ev model.LedgerEvent) string {
	key := fmt.Sprintf("%s/%d/%d", ev.Kind, ev.Position, ev.LogIndex)
	return uuid.NewSHA1(eventIDNamespace, []byte(key)).String()
}

// FixtureEvent is a ledger event whose stay may be written as ISO dates
// instead of epoch days.
type FixtureEvent struct {
	model.LedgerEvent `yaml:",inline"`
	StartDate         string `yaml:"start_date,omitempty"`
	EndDate           string `yaml:"end_date,omitempty"`
}

type Fixture struct {
	Listings []model.Listing `yaml:"listings"`
	Events   []FixtureEvent  `yaml:"events"`
}

func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// LedgerEvents resolves ISO dates and returns the events in fixture order.
func (f *Fixture) LedgerEvents() ([]model.LedgerEvent, error) {
	events := make([]model.LedgerEvent, 0, len(f.Events))
	for i, fe := range f.Events {
		ev := fe.LedgerEvent
		if fe.StartDate != "" {
			day, err := calendar.ToEpochDay(fe.StartDate)
			if err != nil {
				return nil, fmt.Errorf("event %d start_date: %w", i, err)
			}
			ev.StartDay = day
		}
		if fe.EndDate != "" {
			day, err := calendar.ToEpochDay(fe.EndDate)
			if err != nil {
				return nil, fmt.Errorf("event %d end_date: %w", i, err)
			}
			ev.EndDay = day
		}
		events = append(events, ev)
	}
	return events, nil
}

// Messages builds one ledger topic message per listing and event. Listings
// come first so owners resolve once bookings arrive.
func (f *Fixture) Messages() ([]kafka.Message, error) {
	events, err := f.LedgerEvents()
	if err != nil {
		return nil, err
	}

	messages := make([]kafka.Message, 0, len(f.Listings)+len(events))
	for _, l := range f.Listings {
		msg, err := kafka.NewMessage().
			WithKey("listing-" + strconv.FormatUint(l.ID, 10)).
			WithValue(l).
			WithEventType(ingest.EventTypeListingUpserted).
			WithSource(Source).
			Build()
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", l.ID, err)
		}
		messages = append(messages, msg)
	}

	for i, ev := range events {
		eventType, ok := ingest.EventTypeForKind(ev.Kind)
		if !ok {
			return nil, fmt.Errorf("event %d: unknown kind %q", i, ev.Kind)
		}
		msg, err := kafka.NewMessage().
			WithKey(strconv.FormatUint(ev.BookingID, 10)).
			WithValue(ev).
			WithEventID(EventID(ev)).
			WithEventType(eventType).
			WithSource(Source).
			Build()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// DryRun reconciles the fixture without touching Kafka or Mongo.
func (f *Fixture) DryRun(ctx context.Context, w ledger.Window, opts ledger.Options, log *logger.Logger) (*ledger.Result, error) {
	events, err := f.LedgerEvents()
	if err != nil {
		return nil, err
	}
	return ledger.NewReconciler(repository.NewMemorySource(events...), opts, log).Reconcile(ctx, w)
}

type EventAppender interface {
	AppendBatch(ctx context.Context, evs []model.LedgerEvent) (int, error)
}

type ListingUpserter interface {
	Upsert(ctx context.Context, listing *model.Listing) error
}

// Seed writes the fixture straight into the stores, bypassing the ledger
// topic. It returns how many events were new.
func (f *Fixture) Seed(ctx context.Context, events EventAppender, listings ListingUpserter, now time.Time) (int, error) {
	evs, err := f.LedgerEvents()
	if err != nil {
		return 0, err
	}

	for i := range f.Listings {
		l := f.Listings[i]
		l.Host = sanitizer.NormalizeAddress(l.Host)
		if l.UpdatedAt.IsZero() {
			l.UpdatedAt = now
		}
		if err := listings.Upsert(ctx, &l); err != nil {
			return 0, fmt.Errorf("listing %d: %w", l.ID, err)
		}
	}

	for i := range evs {
		if evs[i].ObservedAt.IsZero() {
			evs[i].ObservedAt = now
		}
	}
	inserted, err := events.AppendBatch(ctx, evs)
	if err != nil {
		return 0, fmt.Errorf("append events: %w", err)
	}
	return inserted, nil
}
