// Package record holds normalized records: mappings that remember the order in
// which their keys were set and serialize in exactly that order.
package record

import (
	"time"

	"go.hacdias.com/migrate/dates"
)

type null struct{}

// Date is a civil date, serialized without time of day or zone.
type Date struct {
	time.Time
}

func (d Date) String() string {
	return d.Format(dates.DayLayout)
}

// Record is an insertion-ordered mapping. Absent values are never stored:
// setting nil is a no-op and only SetNull stores an explicit null.
type Record struct {
	keys   []string
	values map[string]any
}

func New() *Record {
	return &Record{values: map[string]any{}}
}

// Set stores value under key. Replacing an existing key keeps its position.
func (r *Record) Set(key string, value any) *Record {
	if value == nil {
		return r
	}
	if rec, ok := value.(*Record); ok && rec == nil {
		return r
	}

	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return r
}

// SetIf stores value only when ok is true. It takes the (value, ok) pairs
// returned by optional lookups.
func (r *Record) SetIf(key string, value any, ok bool) *Record {
	if !ok {
		return r
	}
	return r.Set(key, value)
}

// SetNull stores an explicit null under key.
func (r *Record) SetNull(key string) *Record {
	return r.Set(key, null{})
}

func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	if _, isNull := v.(null); isNull {
		return nil, true
	}
	return v, ok
}

func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}
