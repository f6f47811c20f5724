package normalize

import (
	"testing"
	"time"
)

func TestTimestampFromISOString(t *testing.T) {
	got, ok := Time("2024-05-01T10:30:00Z")
	if !ok {
		t.Fatal("expected string timestamp to resolve")
	}
	want := time.Date(2024, time.May, 1, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestTimestampFromWrappedDate(t *testing.T) {
	raw := map[string]any{"$date": "2023-12-31T23:59:59.500+00:00"}
	got, ok := Time(raw)
	if !ok {
		t.Fatal("expected wrapped timestamp to resolve")
	}
	want := time.Date(2023, time.December, 31, 23, 59, 59, 500000000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestTimestampWithoutOffsetIsUTC(t *testing.T) {
	got, ok := Time("2024-01-15T08:00:00")
	if !ok {
		t.Fatal("expected naive timestamp to resolve")
	}
	want := time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}

func TestTimestampPassthrough(t *testing.T) {
	canonical := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	if got := Timestamp(canonical); got != any(canonical) {
		t.Fatalf("canonical value must pass through, got %v", got)
	}
	if got := Timestamp(42); got != any(42) {
		t.Fatalf("uninterpretable value must pass through, got %v", got)
	}
	if got := Timestamp("not-a-date"); got != any("not-a-date") {
		t.Fatalf("unparseable string must pass through, got %v", got)
	}
}

func TestTimestampIdempotent(t *testing.T) {
	inputs := []any{
		"2024-05-01T10:30:00Z",
		map[string]any{"$date": "2024-05-01T10:30:00Z"},
		time.Now().UTC(),
		nil,
		"garbage",
	}
	for _, in := range inputs {
		once := Timestamp(in)
		twice := Timestamp(once)
		if !timestampsEqual(once, twice) {
			t.Fatalf("Timestamp not idempotent for %v: %v vs %v", in, once, twice)
		}
	}
}

func timestampsEqual(a, b any) bool {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok && bok {
		return ta.Equal(tb)
	}
	return a == b
}

func TestContactsFiltering(t *testing.T) {
	raw := []any{
		map[string]any{"to": "a", "x": "drop"},
		map[string]any{"cc": "b"},
		"not-a-map",
	}
	got := Contacts(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 contacts got %d: %v", len(got), got)
	}
	if got[0] != (Contact{To: "a"}) {
		t.Fatalf("unexpected first contact %v", got[0])
	}
	if got[1] != (Contact{CC: "b"}) {
		t.Fatalf("unexpected second contact %v", got[1])
	}
}

func TestContactsAbsentOrInvalid(t *testing.T) {
	if got := Contacts(nil); len(got) != 0 {
		t.Fatalf("nil must canonicalize to empty list, got %v", got)
	}
	if got := Contacts("bogus"); len(got) != 0 {
		t.Fatalf("non-sequence must canonicalize to empty list, got %v", got)
	}
}

func TestContactsIdempotent(t *testing.T) {
	raw := []any{
		map[string]any{"to": "a", "junk": "x"},
		map[string]any{"bcc": "c"},
	}
	once := Contacts(raw)
	twice := Contacts(once)
	if len(once) != len(twice) {
		t.Fatalf("length changed on second pass: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("contact %d changed on second pass: %v vs %v", i, once[i], twice[i])
		}
	}
}
