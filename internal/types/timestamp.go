package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp accepts the RFC 3339 and naive ISO forms the backend emits.
// Values that match no layout keep their raw text and a zero Time rather
// than failing the enclosing document.
type Timestamp struct {
	time.Time
	Raw string
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseTimestamp(raw)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		if t.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: parsed, Raw: raw}
		}
	}
	return Timestamp{Raw: raw}
}

// String renders the timestamp for display, falling back to the raw text.
func (t Timestamp) String() string {
	if t.Time.IsZero() {
		return t.Raw
	}
	return t.Time.Local().Format("2006-01-02 15:04:05")
}
