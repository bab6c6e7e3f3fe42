package store

import (
	"fmt"
	"strings"
	"time"
)

// sqliteTimeLayout is fixed width so text comparison orders like time.
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

type Dialect interface {
	Placeholder(n int) string
	JSONType() string
	TimestampType() string
	// Time converts t to the value bound for a timestamp column.
	Time(t time.Time) any
}

type sqliteDialect struct{}

func (d sqliteDialect) Placeholder(_ int) string { return "?" }
func (d sqliteDialect) JSONType() string         { return "TEXT" }
func (d sqliteDialect) TimestampType() string    { return "TEXT" }
func (d sqliteDialect) Time(t time.Time) any     { return t.UTC().Format(sqliteTimeLayout) }

type postgresDialect struct{}

func (d postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }
func (d postgresDialect) JSONType() string         { return "JSONB" }
func (d postgresDialect) TimestampType() string    { return "TIMESTAMPTZ" }
func (d postgresDialect) Time(t time.Time) any     { return t.UTC() }

// parseTime converts a scanned timestamp value to time.Time in UTC.
// Handles both SQLite (returns string) and Postgres (returns time.Time).
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case []byte:
		return parseTime(string(t))
	case string:
		if t == "" {
			return time.Time{}
		}
		for _, layout := range []string{
			"2006-01-02 15:04:05",
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02 15:04:05-07:00",
			"2006-01-02 15:04:05.999999-07:00",
		} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Time{}
}

// Rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func Rebind(query string) string {
	n := 0
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString(fmt.Sprintf("$%d", n))
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}
