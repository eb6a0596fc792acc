package websocket

import (
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/markthomas93/WBBMTT/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client message types.
const (
	typePointerDown   = "pointerdown"
	typePointerMove   = "pointermove"
	typePointerUp     = "pointerup"
	typePointerCancel = "pointercancel"
	typeResize        = "resize"
	typeDeviceMotion  = "devicemotion"
	typeCapabilities  = "capabilities"
	typeClear         = "clear"
)

// clientMessage is the union of every notification the tester page sends.
// Fields irrelevant to Type are zero.
type clientMessage struct {
	Type string `json:"type"`

	PointerID   int64   `json:"pointerId"`
	PageX       float64 `json:"pageX"`
	PageY       float64 `json:"pageY"`
	ScreenX     float64 `json:"screenX"`
	ScreenY     float64 `json:"screenY"`
	PointerType string  `json:"pointerType"`

	// Contact extent for pointer messages, surface size for resize.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Acceleration *domain.Vector3 `json:"acceleration"`

	DeviceMotion   *bool `json:"deviceMotion"`
	MaxTouchPoints *int  `json:"maxTouchPoints"`
}

// serverMessage is a text frame sent to the page. Rendered frames travel
// as binary PNG messages instead.
type serverMessage struct {
	Session string `json:"session,omitempty"`
	Log     string `json:"log,omitempty"`
}

func decodeClientMessage(data []byte) (clientMessage, error) {
	var m clientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return clientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	return m, nil
}

func isPointerType(t string) bool {
	switch t {
	case typePointerDown, typePointerMove, typePointerUp, typePointerCancel:
		return true
	default:
		return false
	}
}

// pointerEvent maps a pointer message onto a lifecycle event.
func (m clientMessage) pointerEvent() (domain.Event, error) {
	kind := domain.ParseInputKind(m.PointerType)
	id := domain.ContactID(m.PointerID)

	switch m.Type {
	case typePointerDown:
		return domain.Begin{Record: m.record(kind)}, nil
	case typePointerMove:
		return domain.Move{Record: m.record(kind)}, nil
	case typePointerUp:
		return domain.End{ID: id, Kind: kind}, nil
	case typePointerCancel:
		return domain.Cancel{ID: id, Kind: kind}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, m.Type)
	}
}

func (m clientMessage) record(kind domain.InputKind) domain.ContactRecord {
	return domain.ContactRecord{
		ID:       domain.ContactID(m.PointerID),
		Position: domain.Point{X: m.PageX, Y: m.PageY},
		Screen:   domain.Point{X: m.ScreenX, Y: m.ScreenY},
		RadiusX:  domain.RadiusFromExtent(m.Width),
		RadiusY:  domain.RadiusFromExtent(m.Height),
		Kind:     kind,
	}
}

// surfaceSize rounds a resize message to whole pixels.
func (m clientMessage) surfaceSize() (int, int) {
	return int(math.Round(m.Width)), int(math.Round(m.Height))
}

func encodeServerMessage(m serverMessage) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode server message: %w", err)
	}
	return data, nil
}
