package repository

import (
	"context"
	"slices"
	"sync"

	"staybook/pkg/model"
)

type eventKey struct {
	kind     model.EventKind
	position uint64
	logIndex uint32
}

// MemorySource is an in-process event log with the same semantics as the
// Mongo repository. It backs tests and the replay dry run.
type MemorySource struct {
	mu         sync.RWMutex
	events     []model.LedgerEvent
	seen       map[eventKey]struct{}
	head       uint64
	queryErrs  map[model.EventKind]error
	currentErr error
}

func NewMemorySource(events ...model.LedgerEvent) *MemorySource {
	s := &MemorySource{
		seen:      make(map[eventKey]struct{}),
		queryErrs: make(map[model.EventKind]error),
	}
	for i := range events {
		s.append(events[i])
	}
	return s
}

func (s *MemorySource) append(ev model.LedgerEvent) bool {
	key := eventKey{kind: ev.Kind, position: ev.Position, logIndex: ev.LogIndex}
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.events = append(s.events, ev)
	s.head = max(s.head, ev.Position)
	return true
}

func (s *MemorySource) Append(_ context.Context, ev *model.LedgerEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(*ev), nil
}

func (s *MemorySource) AppendBatch(_ context.Context, evs []model.LedgerEvent) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for i := range evs {
		if s.append(evs[i]) {
			inserted++
		}
	}
	return inserted, nil
}

func (s *MemorySource) QueryEvents(ctx context.Context, kind model.EventKind, from, to uint64) ([]model.LedgerEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.queryErrs[kind]; err != nil {
		return nil, err
	}

	out := make([]model.LedgerEvent, 0)
	for _, ev := range s.events {
		if ev.Kind == kind && ev.Position >= from && ev.Position <= to {
			out = append(out, ev)
		}
	}
	slices.SortStableFunc(out, func(a, b model.LedgerEvent) int {
		if a.Position != b.Position {
			if a.Position < b.Position {
				return -1
			}
			return 1
		}
		return int(a.LogIndex) - int(b.LogIndex)
	})
	return out, nil
}

func (s *MemorySource) CurrentPosition(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentErr != nil {
		return 0, s.currentErr
	}
	return s.head, nil
}

// SetHead moves the reported current position, e.g. past the last event.
func (s *MemorySource) SetHead(position uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head = position
}

// FailQuery makes every QueryEvents call for kind return err. A nil err clears
// the failure.
func (s *MemorySource) FailQuery(kind model.EventKind, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryErrs[kind] = err
}

func (s *MemorySource) FailCurrentPosition(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentErr = err
}
