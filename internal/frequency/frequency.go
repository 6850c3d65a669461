package frequency

import (
	"fmt"
	"time"
)

// Type identifies how a template recurs.
type Type string

const (
	Daily      Type = "daily"
	EveryNDays Type = "every_n_days"
	Weekly     Type = "weekly"
	BiWeekly   Type = "biweekly"
	Monthly    Type = "monthly"
)

var typeFromName = map[string]Type{
	"daily":        Daily,
	"every_n_days": EveryNDays,
	"weekly":       Weekly,
	"biweekly":     BiWeekly,
	"monthly":      Monthly,
}

// ParseType resolves a stored frequency type string.
func ParseType(s string) (Type, error) {
	t, ok := typeFromName[s]
	if !ok {
		return "", fmt.Errorf("unknown frequency type: %q", s)
	}
	return t, nil
}

// Descriptor pairs a frequency type with its value. The value's meaning
// depends on the type: interval in days for EveryNDays, weekday ordinal
// (Sunday = 0) for Weekly and BiWeekly, day of month for Monthly. Daily
// ignores the value.
type Descriptor struct {
	Type  Type
	Value int
}

// New builds a validated descriptor.
func New(t Type, value int) (Descriptor, error) {
	d := Descriptor{Type: t, Value: value}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate checks the type/value pair. Templates are rejected at save time
// when this fails; generation assumes descriptors are already valid.
func (d Descriptor) Validate() error {
	switch d.Type {
	case Daily:
		return nil
	case EveryNDays:
		if d.Value < 1 {
			return fmt.Errorf("every_n_days requires an interval of at least 1, got %d", d.Value)
		}
	case Weekly, BiWeekly:
		if d.Value < 0 || d.Value > 6 {
			return fmt.Errorf("%s requires a weekday ordinal 0-6, got %d", d.Type, d.Value)
		}
	case Monthly:
		if d.Value < 1 || d.Value > 31 {
			return fmt.Errorf("monthly requires a day of month 1-31, got %d", d.Value)
		}
	default:
		return fmt.Errorf("unknown frequency type: %q", d.Type)
	}
	return nil
}

// Next returns the occurrence date strictly after ref. Dates are normalized
// to UTC midnight.
func (d Descriptor) Next(ref time.Time) time.Time {
	ref = DateOf(ref)

	switch d.Type {
	case Daily:
		return ref.AddDate(0, 0, 1)

	case EveryNDays:
		return ref.AddDate(0, 0, d.Value)

	case Weekly:
		// Landing on the target weekday still advances a full week so the
		// result is never equal to ref.
		days := (d.Value - int(ref.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return ref.AddDate(0, 0, days)

	case BiWeekly:
		// Jump two weeks, then snap forward to the target weekday. A ref
		// already on the target weekday lands exactly 14 days out.
		base := ref.AddDate(0, 0, 14)
		days := (d.Value - int(base.Weekday()) + 7) % 7
		return base.AddDate(0, 0, days)

	case Monthly:
		// Clamp to the last day of the next month, so day 31 lands on
		// Feb 28/29.
		first := time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1).Day()
		day := d.Value
		if day > last {
			day = last
		}
		return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
	}

	// Unreachable for validated descriptors.
	return ref.AddDate(0, 0, 1)
}

// Describe returns a human-readable description of the descriptor.
func (d Descriptor) Describe() string {
	switch d.Type {
	case Daily:
		return "Repeats daily"
	case EveryNDays:
		return fmt.Sprintf("Repeats every %d days", d.Value)
	case Weekly:
		return "Repeats weekly on " + time.Weekday(d.Value).String()
	case BiWeekly:
		return "Repeats every 2 weeks on " + time.Weekday(d.Value).String()
	case Monthly:
		return fmt.Sprintf("Repeats monthly on day %d", d.Value)
	}
	return ""
}

// DateOf truncates a time to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
