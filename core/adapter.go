package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Unselector is implemented by widgets that draw a pending range selection.
type Unselector interface {
	Unselect(proposalId string)
}

type UnselectorFunc func(proposalId string)

func (f UnselectorFunc) Unselect(proposalId string) { f(proposalId) }

// CalendarAdapter turns widget callbacks into store mutations and hands the
// store contents back as render input.
//
// A range selection does not block on a title prompt. Select returns a
// Proposal and the caller either resolves it with a title or discards it.
type CalendarAdapter interface {
	Select(ctx context.Context, start time.Time, end time.Time, allDay bool) Proposal
	ResolveProposal(ctx context.Context, proposalId string, title string) (*Event, error)
	DiscardProposal(ctx context.Context, proposalId string) error
	Receive(ctx context.Context, event Event) Event
	Change(ctx context.Context, id EventId, changes EventChanges) bool
	Remove(ctx context.Context, id EventId) bool
	RenderInput(ctx context.Context) []Event
	Proposals() []Proposal
}

type calendarAdapter struct {
	store  Store
	widget Unselector

	mu        sync.Mutex
	proposals map[string]Proposal
}

func NewCalendarAdapter(store Store, widget Unselector) CalendarAdapter {
	if widget == nil {
		widget = UnselectorFunc(func(string) {})
	}

	return &calendarAdapter{
		store:     store,
		widget:    widget,
		proposals: make(map[string]Proposal),
	}
}

func (a *calendarAdapter) Select(ctx context.Context, start time.Time, end time.Time, allDay bool) Proposal {
	proposal := Proposal{Id: newProposalId(), Start: start, End: end, AllDay: allDay}

	a.mu.Lock()
	a.proposals[proposal.Id] = proposal
	a.mu.Unlock()

	log.Ctx(ctx).Debug().Str("component", "calendar").Str("proposal_id", proposal.Id).Msg("range selected")

	return proposal
}

// ResolveProposal adds the proposed event when title is non-blank. A blank
// title counts as a cancel and returns a nil event. The selection is cleared
// in both cases.
func (a *calendarAdapter) ResolveProposal(ctx context.Context, proposalId string, title string) (*Event, error) {
	proposal, ok := a.take(proposalId)
	if !ok {
		return nil, ErrProposalNotFound
	}

	defer a.widget.Unselect(proposalId)

	title = strings.TrimSpace(title)
	if title == "" {
		log.Ctx(ctx).Debug().Str("component", "calendar").Str("proposal_id", proposalId).Msg("proposal dropped, empty title")
		return nil, nil //nolint:nilnil
	}

	event := a.store.AddEvent(ctx, Event{
		Title:  title,
		Start:  proposal.Start,
		End:    proposal.End,
		AllDay: proposal.AllDay,
	})

	return &event, nil
}

func (a *calendarAdapter) DiscardProposal(ctx context.Context, proposalId string) error {
	_, ok := a.take(proposalId)
	if !ok {
		return ErrProposalNotFound
	}

	a.widget.Unselect(proposalId)
	log.Ctx(ctx).Debug().Str("component", "calendar").Str("proposal_id", proposalId).Msg("proposal discarded")

	return nil
}

// Receive handles events the widget created on its own, e.g. by dragging in
// an external item.
func (a *calendarAdapter) Receive(ctx context.Context, event Event) Event {
	return a.store.AddEvent(ctx, event)
}

func (a *calendarAdapter) Change(ctx context.Context, id EventId, changes EventChanges) bool {
	return a.store.UpdateEvent(ctx, id, changes)
}

func (a *calendarAdapter) Remove(ctx context.Context, id EventId) bool {
	return a.store.RemoveEvent(ctx, id)
}

func (a *calendarAdapter) RenderInput(_ context.Context) []Event {
	return a.store.Snapshot()
}

func (a *calendarAdapter) Proposals() []Proposal {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Proposal, 0, len(a.proposals))
	for _, p := range a.proposals {
		out = append(out, p)
	}

	return out
}

func (a *calendarAdapter) take(proposalId string) (Proposal, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	proposal, ok := a.proposals[proposalId]
	if ok {
		delete(a.proposals, proposalId)
	}

	return proposal, ok
}
