package domain

import "strings"

// ContactID is the caller-assigned identifier of one physical contact.
// It is unique among active contacts and stable across its move events.
type ContactID int64

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InputKind categorizes the device that produced a contact.
type InputKind string

const (
	KindTouch   InputKind = "touch"
	KindPen     InputKind = "pen"
	KindMouse   InputKind = "mouse"
	KindUnknown InputKind = "unknown"
)

// ParseInputKind maps a reported pointer type onto an InputKind.
func ParseInputKind(s string) InputKind {
	switch InputKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTouch:
		return KindTouch
	case KindPen:
		return KindPen
	case KindMouse:
		return KindMouse
	default:
		return KindUnknown
	}
}

// ContactRecord is the latest known state of one active contact.
// Position is in page space; Screen is carried for diagnostics only.
// RadiusX and RadiusY are nil when the source reports no contact geometry.
type ContactRecord struct {
	ID       ContactID `json:"id"`
	Position Point     `json:"position"`
	Screen   Point     `json:"screen"`
	RadiusX  *float64  `json:"radius_x,omitempty"`
	RadiusY  *float64  `json:"radius_y,omitempty"`
	Kind     InputKind `json:"kind"`
}

// RadiusFromExtent halves a reported contact width or height.
// A zero extent means the source did not report geometry.
func RadiusFromExtent(extent float64) *float64 {
	if extent <= 0 {
		return nil
	}
	r := extent / 2
	return &r
}

// KindSet is the set of input kinds the tracker accepts.
type KindSet map[InputKind]struct{}

// NewKindSet builds a KindSet from the given kinds.
func NewKindSet(kinds ...InputKind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// TouchOnly is the default acceptance policy.
func TouchOnly() KindSet { return NewKindSet(KindTouch) }

// AllPointers accepts touch, pen and indirect pointing devices.
func AllPointers() KindSet { return NewKindSet(KindTouch, KindPen, KindMouse) }

// Accepts reports whether k is in the set.
func (s KindSet) Accepts(k InputKind) bool {
	_, ok := s[k]
	return ok
}
