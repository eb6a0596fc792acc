package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

var (
	errNotPositive = errors.New("must be positive")
	errNotFinite   = errors.New("must be a finite number")
	errSubPixel    = errors.New("must be at least 1 pixel, or non-positive to disable")
)

// checkMarkSizeScale accepts positive finite scales.
func checkMarkSizeScale(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errNotFinite
	}
	if f <= 0 {
		return errNotPositive
	}
	return nil
}

// checkGridSpan accepts a pitch of at least one pixel. Non-positive values
// disable the grid.
func checkGridSpan(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errNotFinite
	}
	if f > 0 && f < 1 {
		return errSubPixel
	}
	return nil
}

// Query parameter names accepted by the tester page and the WebSocket endpoint.
const (
	QueryMarkSizeScale       = "markSizeScale"
	QueryGridSpan            = "gridSpan"
	QueryBackgroundColor     = "backGroundColor"
	QueryNoPreventDefault    = "noPreventDefault"
	QueryShakeClearMode      = "shakeClearMode"
	QueryHideTouchProperties = "hideTouchProperties"
	QueryShowTouchRadius     = "showTouchRadius"
	QueryShowPointerType     = "showPointerType"
	QueryLogEvents           = "logEvents"
)

// SessionOptions are the per-session presentation and behavior switches.
type SessionOptions struct {
	MarkSizeScale       float64 `json:"mark_size_scale"`
	GridSpan            float64 `json:"grid_span"`
	BackgroundColor     string  `json:"background_color"`
	NoPreventDefault    bool    `json:"no_prevent_default"`
	ShakeClearMode      bool    `json:"shake_clear_mode"`
	HideTouchProperties bool    `json:"hide_touch_properties"`
	ShowTouchRadius     bool    `json:"show_touch_radius"`
	ShowPointerType     bool    `json:"show_pointer_type"`
	LogEvents           bool    `json:"log_events"`
}

// FieldError reports an unusable query parameter.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ParseSessionQuery applies query-string overrides on top of defaults.
// Flags follow checkbox semantics: a present key is true unless its value
// is "false" or "0", so a bare "?shakeClearMode" turns the mode on.
func ParseSessionQuery(defaults SessionOptions, q url.Values) (SessionOptions, error) {
	opts := defaults

	if v, ok := lookup(q, QueryMarkSizeScale); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, &FieldError{Field: QueryMarkSizeScale, Value: v, Err: err}
		}
		if err := checkMarkSizeScale(f); err != nil {
			return opts, &FieldError{Field: QueryMarkSizeScale, Value: v, Err: err}
		}
		opts.MarkSizeScale = f
	}

	if v, ok := lookup(q, QueryGridSpan); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, &FieldError{Field: QueryGridSpan, Value: v, Err: err}
		}
		if err := checkGridSpan(f); err != nil {
			return opts, &FieldError{Field: QueryGridSpan, Value: v, Err: err}
		}
		opts.GridSpan = f
	}

	if v, ok := lookup(q, QueryBackgroundColor); ok {
		opts.BackgroundColor = v
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{QueryNoPreventDefault, &opts.NoPreventDefault},
		{QueryShakeClearMode, &opts.ShakeClearMode},
		{QueryHideTouchProperties, &opts.HideTouchProperties},
		{QueryShowTouchRadius, &opts.ShowTouchRadius},
		{QueryShowPointerType, &opts.ShowPointerType},
		{QueryLogEvents, &opts.LogEvents},
	}
	for _, f := range flags {
		if v, ok := lookup(q, f.key); ok {
			*f.dst = checkbox(v)
		}
	}

	return opts, nil
}

// Query encodes the options that differ from defaults, for forwarding the
// page's query string to the WebSocket URL.
func (o SessionOptions) Query(defaults SessionOptions) url.Values {
	q := url.Values{}
	if o.MarkSizeScale != defaults.MarkSizeScale {
		q.Set(QueryMarkSizeScale, strconv.FormatFloat(o.MarkSizeScale, 'g', -1, 64))
	}
	if o.GridSpan != defaults.GridSpan {
		q.Set(QueryGridSpan, strconv.FormatFloat(o.GridSpan, 'g', -1, 64))
	}
	if o.BackgroundColor != defaults.BackgroundColor {
		q.Set(QueryBackgroundColor, o.BackgroundColor)
	}
	setFlag := func(key string, v, def bool) {
		if v != def {
			q.Set(key, strconv.FormatBool(v))
		}
	}
	setFlag(QueryNoPreventDefault, o.NoPreventDefault, defaults.NoPreventDefault)
	setFlag(QueryShakeClearMode, o.ShakeClearMode, defaults.ShakeClearMode)
	setFlag(QueryHideTouchProperties, o.HideTouchProperties, defaults.HideTouchProperties)
	setFlag(QueryShowTouchRadius, o.ShowTouchRadius, defaults.ShowTouchRadius)
	setFlag(QueryShowPointerType, o.ShowPointerType, defaults.ShowPointerType)
	setFlag(QueryLogEvents, o.LogEvents, defaults.LogEvents)
	return q
}

func lookup(q url.Values, key string) (string, bool) {
	if !q.Has(key) {
		return "", false
	}
	return strings.TrimSpace(q.Get(key)), true
}

func checkbox(v string) bool {
	return v != "false" && v != "0"
}
