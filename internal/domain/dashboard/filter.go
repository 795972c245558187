package dashboard

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/garyjia/gst-billing/internal/domain/entity"
)

// Window is a predefined dashboard time window
type Window string

const (
	WindowToday  Window = "today"
	Window7Days  Window = "7days"
	Window30Days Window = "30days"
	WindowCustom Window = "custom"
)

// DefaultWindow is selected when no window (or an unknown one) is given
const DefaultWindow = Window30Days

// ParseWindow maps a window name to a Window, falling back to DefaultWindow
func ParseWindow(s string) Window {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowToday, Window7Days, Window30Days, WindowCustom:
		return w
	default:
		return DefaultWindow
	}
}

// IsKnownWindow reports whether s names a window exactly
func IsKnownWindow(s string) bool {
	switch Window(s) {
	case WindowToday, Window7Days, Window30Days, WindowCustom:
		return true
	}
	return false
}

// Filter is the transient dashboard selection. Start and End are only
// consulted for WindowCustom.
type Filter struct {
	Window Window
	Start  *civil.Date
	End    *civil.Date
}

// NewFilter builds a filter from request values. Dates use YYYY-MM-DD; blank
// bounds are left nil.
func NewFilter(window, start, end string) (Filter, error) {
	f := Filter{Window: ParseWindow(window)}

	var err error
	if f.Start, err = parseBound("start", start); err != nil {
		return Filter{}, err
	}
	if f.End, err = parseBound("end", end); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseBound(field, s string) (*civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, entity.NewValidationError(field, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return &d, nil
}

// hasRange reports whether a custom range is fully specified
func (f Filter) hasRange() bool {
	return f.Start != nil && f.End != nil
}

// Includes reports whether an invoice dated d falls inside the window.
// Invoice dates are taken as midnight in now's location.
func (f Filter) Includes(d civil.Date, now time.Time) bool {
	switch f.Window {
	case WindowToday:
		return !d.Before(civil.DateOf(now))
	case Window7Days:
		return !d.In(now.Location()).Before(now.Add(-7 * 24 * time.Hour))
	case WindowCustom:
		if !f.hasRange() {
			return true
		}
		return !d.Before(*f.Start) && !d.After(*f.End)
	default:
		return !d.In(now.Location()).Before(now.Add(-30 * 24 * time.Hour))
	}
}

// Label returns the human-readable period name
func (f Filter) Label() string {
	switch f.Window {
	case WindowToday:
		return "Today"
	case Window7Days:
		return "Last 7 Days"
	case WindowCustom:
		if f.hasRange() {
			return fmt.Sprintf("%s to %s", f.Start, f.End)
		}
		return "Custom Period"
	default:
		return "Last 30 Days"
	}
}
