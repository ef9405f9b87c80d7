package office

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Events manages the calendar.
type Events struct{ *service }

func validateEvent(e types.CalendarEvent) error {
	switch {
	case e.Title == "":
		return missing("title")
	case e.Date == "":
		return missing("date")
	case e.LawyerID == "":
		return missing("lawyer_id")
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: date %q", types.ErrInvalidField, e.Date)
	}
	return nil
}

func eventDetails(e types.CalendarEvent) string {
	return fmt.Sprintf("Tarih: %s, Saat: %s", e.Date, e.Time)
}

// Create stores a new event. Events without a status are planned.
func (ev *Events) Create(ctx context.Context, a audit.Actor, e types.CalendarEvent) (types.CalendarEvent, error) {
	if err := validateEvent(e); err != nil {
		return types.CalendarEvent{}, err
	}
	e.ID = ""
	if e.Status == "" {
		e.Status = types.EventPlanned
	}
	e.CreatedAt = ev.stamp()
	e.UpdatedAt = e.CreatedAt

	res := ev.store.Push(ctx, types.CalendarEvents, e)
	if err := check("creating event", res); err != nil {
		return types.CalendarEvent{}, err
	}
	e.ID = res.Key
	ev.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionCreate,
		Target:     audit.EntityEvent,
		TargetID:   e.ID,
		TargetName: e.Title,
		Details:    eventDetails(e),
	})
	return e, nil
}

// Get returns the event with id.
func (ev *Events) Get(ctx context.Context, id string) (types.CalendarEvent, bool) {
	return store.GetAs[types.CalendarEvent](ctx, ev.store, types.CalendarEvents, id)
}

// Update overwrites an existing event.
func (ev *Events) Update(ctx context.Context, a audit.Actor, e types.CalendarEvent) (types.CalendarEvent, error) {
	if e.ID == "" {
		return types.CalendarEvent{}, missing("id")
	}
	if err := validateEvent(e); err != nil {
		return types.CalendarEvent{}, err
	}
	old, ok := ev.Get(ctx, e.ID)
	if !ok {
		return types.CalendarEvent{}, notFound(types.CalendarEvents, e.ID)
	}
	if e.CreatedAt == "" {
		e.CreatedAt = old.CreatedAt
	}
	e.UpdatedAt = ev.stamp()
	if err := check("updating event", ev.store.Set(ctx, types.CalendarEvents, e.ID, e)); err != nil {
		return types.CalendarEvent{}, err
	}
	ev.record(ctx, audit.Entry{
		Actor:      a,
		Action:     audit.ActionUpdate,
		Target:     audit.EntityEvent,
		TargetID:   e.ID,
		TargetName: e.Title,
		Details:    eventDetails(e),
	})
	return e, nil
}

// Delete removes the event.
func (ev *Events) Delete(ctx context.Context, a audit.Actor, id string) error {
	if id == "" {
		return missing("id")
	}
	old, ok := ev.Get(ctx, id)
	if err := check("deleting event", ev.store.Remove(ctx, types.CalendarEvents+"/"+id)); err != nil {
		return err
	}
	e := audit.Entry{
		Actor:      a,
		Action:     audit.ActionDelete,
		Target:     audit.EntityEvent,
		TargetID:   id,
		TargetName: types.Unknown,
	}
	if ok {
		e.TargetName = old.Title
		e.Details = "Tarih: " + old.Date
	}
	ev.record(ctx, e)
	return nil
}

// OnDate returns the events of one day ordered by time.
func (ev *Events) OnDate(ctx context.Context, day time.Time) []types.CalendarEvent {
	date := day.Format(DateLayout)
	var out []types.CalendarEvent
	for _, e := range store.AllAs[types.CalendarEvent](ctx, ev.store, types.CalendarEvents) {
		if e.Date == date {
			out = append(out, e)
		}
	}
	sortChronological(out)
	return out
}

// Upcoming returns at most n events on or after from that are not
// cancelled, soonest first. n <= 0 means no limit.
func (ev *Events) Upcoming(ctx context.Context, from time.Time, n int) []types.CalendarEvent {
	start := from.Format(DateLayout)
	var out []types.CalendarEvent
	for _, e := range store.AllAs[types.CalendarEvent](ctx, ev.store, types.CalendarEvents) {
		if e.Date >= start && e.Status != types.EventCancelled {
			out = append(out, e)
		}
	}
	sortChronological(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func sortChronological(events []types.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}
