// Package normalize canonicalizes the loosely-shaped field values that
// arrive on the wire or survive in legacy documents. Every function is
// pure and total: values that cannot be interpreted pass through
// unchanged rather than failing the request.
package normalize

import (
	"strings"
	"time"
)

// dateKey is the reserved key legacy exports use to wrap timestamps,
// e.g. {"$date": "2024-05-01T10:00:00Z"}.
const dateKey = "$date"

// Contact is a single contact-routing record. Only the three reserved
// roles survive normalization; anything else is dropped.
type Contact struct {
	To  string `json:"to,omitempty" bson:"to,omitempty"`
	CC  string `json:"cc,omitempty" bson:"cc,omitempty"`
	BCC string `json:"bcc,omitempty" bson:"bcc,omitempty"`
}

// IsZero reports whether no role is set.
func (c Contact) IsZero() bool {
	return c.To == "" && c.CC == "" && c.BCC == ""
}

// Timestamp resolves a timestamp-shaped value to time.Time. Accepted
// shapes: an ISO-8601 string, a map carrying an ISO-8601 string under the
// reserved date key, or an already canonical time.Time. Anything else is
// returned as-is.
func Timestamp(v any) any {
	switch raw := v.(type) {
	case time.Time:
		return raw
	case string:
		if ts, err := parseISO(raw); err == nil {
			return ts
		}
		return v
	case map[string]any:
		if inner, ok := raw[dateKey].(string); ok {
			if ts, err := parseISO(inner); err == nil {
				return ts
			}
		}
		return v
	default:
		return v
	}
}

// Time is Timestamp narrowed to the canonical type. ok is false when the
// value could not be interpreted as a timestamp.
func Time(v any) (time.Time, bool) {
	ts, ok := Timestamp(v).(time.Time)
	return ts, ok
}

// Contacts canonicalizes a contact-list value. A missing or non-list
// value yields an empty list. List elements that are mappings keep only
// the to/cc/bcc roles; non-mapping elements are dropped. Input order is
// preserved.
func Contacts(v any) []Contact {
	switch list := v.(type) {
	case nil:
		return []Contact{}
	case []Contact:
		out := make([]Contact, len(list))
		copy(out, list)
		return out
	case []map[string]string:
		out := make([]Contact, 0, len(list))
		for _, m := range list {
			out = append(out, Contact{To: m["to"], CC: m["cc"], BCC: m["bcc"]})
		}
		return out
	case []any:
		out := make([]Contact, 0, len(list))
		for _, el := range list {
			switch m := el.(type) {
			case map[string]any:
				out = append(out, contactFromMap(m))
			case map[string]string:
				out = append(out, Contact{To: m["to"], CC: m["cc"], BCC: m["bcc"]})
			case Contact:
				out = append(out, m)
			}
		}
		return out
	default:
		return []Contact{}
	}
}

func contactFromMap(m map[string]any) Contact {
	var c Contact
	if s, ok := m["to"].(string); ok {
		c.To = s
	}
	if s, ok := m["cc"].(string); ok {
		c.CC = s
	}
	if s, ok := m["bcc"].(string); ok {
		c.BCC = s
	}
	return c
}

// parseISO parses an ISO-8601 timestamp. A trailing "Z" is treated as the
// "+00:00" offset; strings without an offset are taken as UTC.
func parseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	layouts := []string{
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02",
	}
	var firstErr error
	for i, layout := range layouts {
		var (
			ts  time.Time
			err error
		)
		if i == 0 {
			ts, err = time.Parse(layout, s)
		} else {
			ts, err = time.ParseInLocation(layout, s, time.UTC)
		}
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
