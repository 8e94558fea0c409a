package querysql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/fieldquery/internal/value"
)

// Dialect is the SQL flavour a compiler emits.
type Dialect int

const (
	// SQLite uses ? placeholders. Timestamps are text, compared and ordered
	// after normalizing to SQLiteTimeLayout in UTC.
	SQLite Dialect = iota
	// Postgres uses $n placeholders and native timestamps.
	Postgres
)

// SQLiteTimeLayout is the fixed-width UTC text form timestamp parameters and
// normalized timestamp columns share in SQLite, so text order is time order.
const SQLiteTimeLayout = "2006-01-02 15:04:05.000"

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	default:
		return SQLite, fmt.Errorf("no SQL dialect for driver %q", driver)
	}
}

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Param converts a value to the argument passed to the driver.
func (d Dialect) Param(v value.Value) (any, error) {
	switch val := v.(type) {
	case nil, value.Null:
		return nil, nil
	case value.Int:
		return int64(val), nil
	case value.Float:
		return float64(val), nil
	case value.Text:
		return string(val), nil
	case value.Bool:
		return bool(val), nil
	case value.Time:
		t := time.Time(val).UTC()
		if d == SQLite {
			return t.Format(SQLiteTimeLayout), nil
		}
		return t, nil
	case value.UUID:
		return uuid.UUID(val).String(), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

// quoteIdent quotes an identifier with double quotes, which both dialects
// accept.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
