package domain

import (
	"bytes"
	"strconv"
	"time"
)

// FlexTime is a timestamp field as served by the upstream gateway. Upstream
// records mix RFC 3339 strings, bare dates and epoch numbers, and sometimes
// carry garbage. A value that cannot be parsed decodes as absent rather than
// failing the whole record: windowing and time-delta metrics then simply
// exclude it.
type FlexTime struct {
	time.Time
}

// Present reports whether the timestamp was set and parseable.
func (t FlexTime) Present() bool {
	return !t.Time.IsZero()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts null, RFC 3339 variants, bare dates and epoch
// seconds/milliseconds. Anything else yields the zero value, never an error.
func (t *FlexTime) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}

	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		s := string(b[1 : len(b)-1])
		if s == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return nil
	}

	// Epoch numbers: values above 1e12 are milliseconds.
	if n, err := strconv.ParseFloat(string(b), 64); err == nil && n > 0 {
		if n > 1e12 {
			t.Time = time.UnixMilli(int64(n)).UTC()
		} else {
			t.Time = time.Unix(int64(n), 0).UTC()
		}
	}
	return nil
}

// MarshalJSON emits RFC 3339, or null when absent.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if !t.Present() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Time.Format(time.RFC3339) + `"`), nil
}
