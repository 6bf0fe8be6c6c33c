package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/araddon/dateparse"
)

// DefaultTimezone is the zone the legacy content was authored in. Timestamps
// without an offset are read as wall-clock time in this zone.
const DefaultTimezone = "America/Los_Angeles"

// DayLayout is the layout of civil dates.
const DayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// Normalizer turns legacy date values into zone-aware times.
type Normalizer struct {
	loc *time.Location
}

func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Normalize accepts a timestamp string or a time.Time. A trailing "Z" is a
// separator left over by the legacy tooling and never means UTC.
func (n *Normalizer) Normalize(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return n.fromTime(v), nil
	case *time.Time:
		if v == nil {
			break
		}
		return n.fromTime(*v), nil
	case string:
		return n.parse(v)
	}

	return time.Time{}, fmt.Errorf("%w: unsupported value %v (%T)", ErrInvalidDate, v, v)
}

// Day is like Normalize but drops the time of day.
func (n *Normalizer) Day(v any) (time.Time, error) {
	t, err := n.Normalize(v)
	if err != nil {
		return time.Time{}, err
	}

	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()), nil
}

func (n *Normalizer) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "Z"))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	t, err := dateparse.ParseIn(s, n.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidDate, s, err)
	}

	return t, nil
}

// fromTime reinterprets UTC values as naive: decoders hand out UTC for
// timestamps that carried no offset at all.
func (n *Normalizer) fromTime(t time.Time) time.Time {
	if t.Location() != time.UTC {
		return t
	}

	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), n.loc)
}
