package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// TimestampLayouts are tried in order when a timestamp arrives as text,
// either from a filter argument or from a store without a native type.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseError reports text that cannot be coerced to a kind.
type ParseError struct {
	Kind  Kind
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse %q as %s: %v", e.Input, e.Kind, e.Err)
	}
	return fmt.Sprintf("cannot parse %q as %s", e.Input, e.Kind)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse coerces textual input to a value of the given kind.
// Text is NFC normalized at this boundary so comparisons against stored
// text do not depend on the caller's normalization form.
func Parse(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &ParseError{Kind: kind, Input: raw, Err: numError(err)}
		}
		return Int(n), nil
	case KindDecimal:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &ParseError{Kind: kind, Input: raw, Err: numError(err)}
		}
		return Float(f), nil
	case KindText:
		return Text(norm.NFC.String(raw)), nil
	case KindBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ParseError{Kind: kind, Input: raw, Err: numError(err)}
		}
		return Bool(b), nil
	case KindTimestamp:
		t, err := parseTime(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ParseError{Kind: kind, Input: raw, Err: err}
		}
		return Time(t), nil
	case KindUUID:
		u, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, &ParseError{Kind: kind, Input: raw, Err: err}
		}
		return UUID(u), nil
	default:
		return nil, &ParseError{Kind: kind, Input: raw, Err: fmt.Errorf("kind is not a scalar")}
	}
}

// numError strips the strconv wrapper, which repeats the input.
func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp layout")
}

// FromDriver converts a value produced by database/sql scanning into a
// Value of the given kind. nil becomes Null.
func FromDriver(kind Kind, raw any) (Value, error) {
	if raw == nil {
		return Null{}, nil
	}

	switch kind {
	case KindInteger:
		switch v := raw.(type) {
		case int64:
			return Int(v), nil
		case int:
			return Int(int64(v)), nil
		case int32:
			return Int(int64(v)), nil
		case int16:
			return Int(int64(v)), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("non-integral value %v for integer column", v)
			}
			return Int(int64(v)), nil
		case []byte:
			return Parse(kind, string(v))
		case string:
			return Parse(kind, v)
		}
	case KindDecimal:
		switch v := raw.(type) {
		case float64:
			return Float(v), nil
		case float32:
			return Float(float64(v)), nil
		case int64:
			return Float(float64(v)), nil
		case []byte:
			return Parse(kind, string(v))
		case string:
			return Parse(kind, v)
		}
	case KindText:
		switch v := raw.(type) {
		case string:
			return Text(v), nil
		case []byte:
			return Text(string(v)), nil
		case int64:
			return Text(strconv.FormatInt(v, 10)), nil
		}
	case KindBoolean:
		switch v := raw.(type) {
		case bool:
			return Bool(v), nil
		case int64:
			return Bool(v != 0), nil
		case []byte:
			return Parse(kind, string(v))
		case string:
			return Parse(kind, v)
		}
	case KindTimestamp:
		switch v := raw.(type) {
		case time.Time:
			return Time(v), nil
		case []byte:
			return Parse(kind, string(v))
		case string:
			return Parse(kind, v)
		}
	case KindUUID:
		switch v := raw.(type) {
		case uuid.UUID:
			return UUID(v), nil
		case [16]byte:
			return UUID(v), nil
		case []byte:
			if len(v) == 16 {
				u, err := uuid.FromBytes(v)
				if err != nil {
					return nil, err
				}
				return UUID(u), nil
			}
			return Parse(kind, string(v))
		case string:
			return Parse(kind, v)
		}
	}

	return nil, fmt.Errorf("unsupported driver value %T for %s column", raw, kind)
}
