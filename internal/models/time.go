package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Форматы LocalDateTime, которые отдаёт апстрим (без зоны).
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// LocalTime — время без часового пояса. null и "" дают нулевое значение.
type LocalTime struct {
	time.Time
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("local time: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	v, err := ParseLocalTime(s)
	if err != nil {
		return err
	}

	t.Time = v
	return nil
}

// ParseLocalTime разбирает LocalDateTime апстрима.
func ParseLocalTime(s string) (time.Time, error) {
	for _, layout := range localLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, nil
		}
	}

	return time.Time{}, fmt.Errorf("local time: unsupported format %q", s)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}
