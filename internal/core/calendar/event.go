package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/standup/pkg/iojson"
)

// Event is a calendar event as the backend proxies it from the provider.
type Event struct {
	ID          iojson.FlexString `json:"id"`
	Summary     string            `json:"summary"`
	Start       EventTime         `json:"start"`
	End         EventTime         `json:"end"`
	Location    string            `json:"location,omitempty"`
	Description string            `json:"description,omitempty"`
	Attendees   []Attendee        `json:"attendees,omitempty"`
}

// EventTime is an event boundary. The backend sends either a plain string or
// the provider's {dateTime, date} object; all-day events only carry Date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *EventTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*t = EventTime{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = EventTimeFromString(s)
		return nil
	default:
		type plain EventTime
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("event time: %w", err)
		}
		*t = EventTime(p)
		return nil
	}
}

// EventTimeFromString classifies s as a date or a date-time.
func EventTimeFromString(s string) EventTime {
	s = strings.TrimSpace(s)
	if len(s) == len(time.DateOnly) {
		return EventTime{Date: s}
	}
	return EventTime{DateTime: s}
}

// IsZero reports whether neither form is set.
func (t EventTime) IsZero() bool {
	return t.DateTime == "" && t.Date == ""
}

// AllDay reports whether the time is a bare date.
func (t EventTime) AllDay() bool {
	return t.DateTime == "" && t.Date != ""
}

// String returns whichever form is set.
func (t EventTime) String() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// Time resolves the boundary to an instant in the local zone. Bare dates are
// local midnight of that day. Date-times without an offset are local.
func (t EventTime) Time() (time.Time, error) {
	if t.DateTime == "" {
		if t.Date == "" {
			return time.Time{}, fmt.Errorf("event time is empty")
		}
		return ParseLocalDate(t.Date)
	}

	if ts, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
		return ts.In(time.Local), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"} {
		if ts, err := time.ParseInLocation(layout, t.DateTime, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse event time %q", t.DateTime)
}

// Attendee is an event guest. The backend sends either a bare address or an
// object.
type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Attendee) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Attendee{Email: s}
		return nil
	}

	type plain Attendee
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("attendee: %w", err)
	}
	*a = Attendee(p)
	return nil
}

// Name returns the display name, falling back to the address.
func (a Attendee) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Email
}
