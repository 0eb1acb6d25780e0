package core

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the single wire pattern for timestamps, used both when
// reading service responses and when writing request bodies. The Z0700 zone
// form accepts "Z" as well as numeric offsets.
const TimeLayout = "2006-01-02T15:04:05Z0700"

// Timestamp wraps time.Time with the fixed UTC wire format.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t to UTC second precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// ParseTimestamp reads a wire value using the fixed layout.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse(TimeLayout, value)
	if err != nil {
		return Timestamp{}, fmt.Errorf("core: parse timestamp %q: %w", value, err)
	}
	return Timestamp{Time: parsed.UTC()}, nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + t.Time.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed.Time
	return nil
}

// Equal compares at second precision in UTC.
func (t Timestamp) Equal(other Timestamp) bool {
	return t.Time.UTC().Truncate(time.Second).Equal(other.Time.UTC().Truncate(time.Second))
}
