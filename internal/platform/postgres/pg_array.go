package postgres

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// textArray adapts []string to a PostgreSQL text[] column, both as a bound
// parameter and as a scan target. The stdlib database/sql interface used by
// the pgx driver has no native []string support, so the array literal is
// built and parsed here.
type textArray []string

var _ driver.Valuer = textArray(nil)

var arrayEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Value renders the slice as a text[] literal, quoting every element.
func (a textArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, s := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(arrayEscaper.Replace(s))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String(), nil
}

// Scan parses a text[] literal. A NULL column scans to a nil slice.
func (a *textArray) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		return a.parse(v)
	case []byte:
		return a.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into textArray", src)
	}
}

func (a *textArray) parse(lit string) error {
	if len(lit) < 2 || lit[0] != '{' || lit[len(lit)-1] != '}' {
		return fmt.Errorf("malformed text[] literal: %q", lit)
	}
	inner := lit[1 : len(lit)-1]
	if inner == "" {
		*a = []string{}
		return nil
	}

	var (
		out      []string
		elem     strings.Builder
		inQuotes bool
		escaped  bool
	)
	flush := func() {
		s := elem.String()
		elem.Reset()
		// An unquoted bare NULL marks a null element; keep it as an
		// empty string since the schema never stores nulls in arrays.
		if s == "NULL" {
			s = ""
		}
		out = append(out, s)
	}
	for _, r := range inner {
		switch {
		case escaped:
			elem.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			flush()
		default:
			elem.WriteRune(r)
		}
	}
	flush()

	*a = out
	return nil
}
