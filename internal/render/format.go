package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/markthomas93/WBBMTT/internal/tracker"
)

const (
	coordWidth      = 7
	coordPrecision  = 2
	radiusWidth     = 5
	radiusPrecision = 1

	// An absent radius is formatted without decimals, one column narrower.
	radiusAbsentWidth = 4
)

// FormatFixed renders v with a fixed number of decimals, right-aligned in
// a field of width. A nil value renders as a right-aligned "N/A".
func FormatFixed(v *float64, width, precision int) string {
	if v == nil {
		return fmt.Sprintf("%*s", width, "N/A")
	}
	return fmt.Sprintf("%*.*f", width, precision, *v)
}

// OrdinalLabel turns a 0-based ordinal into "1st", "2nd", "3rd", "4th", ...
func OrdinalLabel(ordinal int) string {
	n := ordinal + 1
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// FormatContact builds the diagnostic line for one snapshot entry.
func FormatContact(e tracker.Entry, showRadius, showKind bool) string {
	x, y := e.Record.Position.X, e.Record.Position.Y

	var b strings.Builder
	b.WriteString(OrdinalLabel(e.Ordinal))
	b.WriteString(" X:")
	b.WriteString(FormatFixed(&x, coordWidth, coordPrecision))
	b.WriteString(" Y:")
	b.WriteString(FormatFixed(&y, coordWidth, coordPrecision))

	if showRadius {
		b.WriteString(" rX:")
		b.WriteString(formatRadius(e.Record.RadiusX))
		b.WriteString(" rY:")
		b.WriteString(formatRadius(e.Record.RadiusY))
	}
	if showKind && e.Record.Kind != "" {
		b.WriteString(" Type:")
		b.WriteString(string(e.Record.Kind))
	}
	return b.String()
}

func formatRadius(r *float64) string {
	if r == nil {
		return FormatFixed(nil, radiusAbsentWidth, 0)
	}
	return FormatFixed(r, radiusWidth, radiusPrecision)
}
