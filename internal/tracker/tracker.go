package tracker

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/markthomas93/WBBMTT/internal/domain"
)

// Outcome describes what Apply did with an event.
type Outcome int

const (
	// Applied means the active set was mutated.
	Applied Outcome = iota
	// Filtered means the event's input kind is not accepted.
	Filtered
	// Ignored means the event referenced an inactive contact (protocol anomaly).
	Ignored
	// Rejected means the event category is not part of the lifecycle.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Filtered:
		return "filtered"
	case Ignored:
		return "ignored"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Entry is one contact in snapshot order. Ordinal is its 0-based position
// among active contacts and shifts when an earlier contact is removed.
type Entry struct {
	Ordinal int                  `json:"ordinal"`
	Record  domain.ContactRecord `json:"record"`
}

// Tracker owns the active contact set.
type Tracker struct {
	order    []domain.ContactID
	contacts map[domain.ContactID]domain.ContactRecord
	accept   domain.KindSet
	logger   *slog.Logger
}

// New creates an empty tracker accepting the given input kinds.
// A nil logger discards diagnostics.
func New(accept domain.KindSet, logger *slog.Logger) *Tracker {
	if accept == nil {
		accept = domain.TouchOnly()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		contacts: make(map[domain.ContactID]domain.ContactRecord),
		accept:   accept,
		logger:   logger,
	}
}

// Accepts is the input-kind filter applied before any mutation.
func (t *Tracker) Accepts(ev domain.Event) bool {
	return t.accept.Accepts(ev.InputKind())
}

// Apply mutates the active set according to ev.
func (t *Tracker) Apply(ev domain.Event) Outcome {
	if ev == nil {
		t.logger.Warn("Discarding nil event")
		return Rejected
	}
	if !t.Accepts(ev) {
		return Filtered
	}

	switch e := ev.(type) {
	case domain.Begin:
		if _, exists := t.contacts[e.Record.ID]; exists {
			t.logger.Warn("Begin for active contact, overwriting", "contact_id", e.Record.ID)
		} else {
			t.order = append(t.order, e.Record.ID)
		}
		t.contacts[e.Record.ID] = e.Record
		return Applied

	case domain.Move:
		if _, exists := t.contacts[e.Record.ID]; !exists {
			t.logger.Warn("Move for inactive contact, ignoring", "contact_id", e.Record.ID, "error", domain.ErrUnknownContact)
			return Ignored
		}
		t.contacts[e.Record.ID] = e.Record
		return Applied

	case domain.End:
		return t.remove(e.ID, "end")

	case domain.Cancel:
		return t.remove(e.ID, "cancel")

	default:
		t.logger.Warn("Discarding event of unknown category", "event_type", fmt.Sprintf("%T", ev), "error", domain.ErrUnknownEvent)
		return Rejected
	}
}

func (t *Tracker) remove(id domain.ContactID, via string) Outcome {
	if _, exists := t.contacts[id]; !exists {
		t.logger.Warn("Release for inactive contact, ignoring", "contact_id", id, "via", via, "error", domain.ErrUnknownContact)
		return Ignored
	}
	delete(t.contacts, id)
	if i := slices.Index(t.order, id); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return Applied
}

// Snapshot returns the active contacts in insertion order. The returned
// slice is a copy; later mutations do not affect it.
func (t *Tracker) Snapshot() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for i, id := range t.order {
		entries = append(entries, Entry{Ordinal: i, Record: t.contacts[id]})
	}
	return entries
}

// Clear drops every active contact and returns how many were dropped.
func (t *Tracker) Clear() int {
	n := len(t.order)
	t.order = t.order[:0]
	clear(t.contacts)
	return n
}

// Len returns the number of active contacts.
func (t *Tracker) Len() int { return len(t.order) }

// Has reports whether id is active.
func (t *Tracker) Has(id domain.ContactID) bool {
	_, ok := t.contacts[id]
	return ok
}
