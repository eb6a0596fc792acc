package domain

// Event is a contact lifecycle notification. It is a closed variant:
// Begin, Move, End and Cancel are the only implementations.
type Event interface {
	Contact() ContactID
	InputKind() InputKind
	isEvent()
}

type baseEvent struct{}

func (baseEvent) isEvent() {}

// Begin starts tracking a contact.
type Begin struct {
	baseEvent
	Record ContactRecord
}

// Move updates an active contact.
type Move struct {
	baseEvent
	Record ContactRecord
}

// End releases an active contact.
type End struct {
	baseEvent
	ID   ContactID
	Kind InputKind
}

// Cancel aborts an active contact (the platform took the pointer away).
type Cancel struct {
	baseEvent
	ID   ContactID
	Kind InputKind
}

func (e Begin) Contact() ContactID  { return e.Record.ID }
func (e Move) Contact() ContactID   { return e.Record.ID }
func (e End) Contact() ContactID    { return e.ID }
func (e Cancel) Contact() ContactID { return e.ID }

func (e Begin) InputKind() InputKind  { return e.Record.Kind }
func (e Move) InputKind() InputKind   { return e.Record.Kind }
func (e End) InputKind() InputKind    { return e.Kind }
func (e Cancel) InputKind() InputKind { return e.Kind }

// EventName returns a short label for logs and metrics.
func EventName(ev Event) string {
	switch ev.(type) {
	case Begin:
		return "begin"
	case Move:
		return "move"
	case End:
		return "end"
	case Cancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Motion is one device-motion sample. Acceleration is nil when the
// sensor delivered no acceleration data.
type Motion struct {
	Acceleration *Vector3
}

// Vector3 is an acceleration reading in m/s².
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MagnitudeSquared returns x²+y²+z².
func (v Vector3) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}
