package core

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Store is the in-memory source of truth shared by the calendar adapter and
// the conversation channel. Order is kept but carries no meaning; lookups are
// by id.
type Store interface {
	AddEvent(ctx context.Context, candidate Event) Event
	UpdateEvent(ctx context.Context, id EventId, changes EventChanges) bool
	RemoveEvent(ctx context.Context, id EventId) bool
	ReplaceAll(ctx context.Context, events []Event)
	Snapshot() []Event
	Get(id EventId) (Event, bool)
	Len() int
}

type store struct {
	tracer  trace.Tracer
	metrics *StoreMetrics
	nextId  IdGenerator

	mu     sync.RWMutex
	events []Event
}

func NewStore(initial []Event, nextId IdGenerator) Store {
	if nextId == nil {
		nextId = ClockIdGenerator(nil)
	}

	return &store{
		tracer:  otel.GetTracerProvider().Tracer("schedule-planner/core"),
		metrics: NewStoreMetrics(),
		nextId:  nextId,
		events:  slices.Clone(initial),
	}
}

// AddEvent ignores any id on the candidate and assigns a fresh one.
func (s *store) AddEvent(ctx context.Context, candidate Event) Event {
	ctx, span := s.tracer.Start(ctx, "store.AddEvent")
	defer span.End()

	s.mu.Lock()
	candidate.Id = s.nextId()
	s.events = append(s.events, candidate)
	size := len(s.events)
	s.mu.Unlock()

	span.SetAttributes(attribute.String("event.id", string(candidate.Id)))
	s.metrics.Observe(ctx, "add_event", true, size)
	log.Ctx(ctx).Debug().Str("component", "store").Str("event_id", string(candidate.Id)).Msg("event added")

	return candidate
}

func (s *store) UpdateEvent(ctx context.Context, id EventId, changes EventChanges) bool {
	ctx, span := s.tracer.Start(ctx, "store.UpdateEvent", trace.WithAttributes(attribute.String("event.id", string(id))))
	defer span.End()

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		if changes.Title != nil {
			s.events[i].Title = *changes.Title
		}

		if changes.Start != nil {
			s.events[i].Start = *changes.Start
		}

		if changes.End != nil {
			s.events[i].End = *changes.End
		}
	}
	size := len(s.events)
	s.mu.Unlock()

	s.metrics.Observe(ctx, "update_event", i >= 0, size)

	if i < 0 {
		log.Ctx(ctx).Debug().Str("component", "store").Str("event_id", string(id)).Msg("update ignored, unknown event")
	}

	return i >= 0
}

func (s *store) RemoveEvent(ctx context.Context, id EventId) bool {
	ctx, span := s.tracer.Start(ctx, "store.RemoveEvent", trace.WithAttributes(attribute.String("event.id", string(id))))
	defer span.End()

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.events = slices.Delete(s.events, i, i+1)
	}
	size := len(s.events)
	s.mu.Unlock()

	s.metrics.Observe(ctx, "remove_event", i >= 0, size)

	return i >= 0
}

func (s *store) ReplaceAll(ctx context.Context, events []Event) {
	ctx, span := s.tracer.Start(ctx, "store.ReplaceAll", trace.WithAttributes(attribute.Int("events.count", len(events))))
	defer span.End()

	replacement := make([]Event, len(events))
	copy(replacement, events)

	s.mu.Lock()
	s.events = replacement
	s.mu.Unlock()

	s.metrics.Observe(ctx, "replace_all", true, len(replacement))
	log.Ctx(ctx).Info().Str("component", "store").Int("events", len(replacement)).Msg("schedule replaced")
}

func (s *store) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)

	return out
}

func (s *store) Get(id EventId) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Event{}, false
	}

	return s.events[i], true
}

func (s *store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}

// indexOf expects the caller to hold mu.
func (s *store) indexOf(id EventId) int {
	return slices.IndexFunc(s.events, func(e Event) bool { return e.Id == id })
}
