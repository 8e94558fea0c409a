package value

import (
	"time"

	"github.com/google/uuid"
)

// Value is a sealed interface over the typed values that flow between the
// filter compiler, the store and hydration.
// Only Null, Int, Float, Text, Bool, Time and UUID implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// Kind returns the semantic kind of the value. Null reports KindInvalid.
	Kind() Kind

	// Native returns the plain Go representation: int64, float64, string,
	// bool, time.Time, uuid.UUID, or nil for Null.
	Native() any
}

// Null is an absent value of any kind.
type Null struct{}

func (Null) value()      {}
func (Null) Kind() Kind  { return KindInvalid }
func (Null) Native() any { return nil }

// Int is an integer value.
type Int int64

func (Int) value()        {}
func (Int) Kind() Kind    { return KindInteger }
func (v Int) Native() any { return int64(v) }

// Float is a decimal value.
type Float float64

func (Float) value()        {}
func (Float) Kind() Kind    { return KindDecimal }
func (v Float) Native() any { return float64(v) }

// Text is a string value. Text produced by Parse is NFC normalized.
type Text string

func (Text) value()        {}
func (Text) Kind() Kind    { return KindText }
func (v Text) Native() any { return string(v) }

// Bool is a boolean value.
type Bool bool

func (Bool) value()        {}
func (Bool) Kind() Kind    { return KindBoolean }
func (v Bool) Native() any { return bool(v) }

// Time is a timestamp value.
type Time time.Time

func (Time) value()        {}
func (Time) Kind() Kind    { return KindTimestamp }
func (v Time) Native() any { return time.Time(v) }

// UUID is a UUID value.
type UUID uuid.UUID

func (UUID) value()        {}
func (UUID) Kind() Kind    { return KindUUID }
func (v UUID) Native() any { return uuid.UUID(v) }

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Key returns a comparable representation of v suitable as a map key.
// Timestamps are keyed by their UTC instant so equal instants collide.
func Key(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Time:
		return time.Time(val).UTC().UnixNano()
	default:
		return v.Native()
	}
}
