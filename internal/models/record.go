package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record — непрозрачная запись сущности админки.
// Числа хранятся как json.Number, чтобы цены не теряли точность.
type Record map[string]any

func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}

	*r = m
	return nil
}

// ID — идентификатор записи (поле "id").
func (r Record) ID() (int64, bool) {
	switch v := r["id"].(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// String — текстовое представление поля; "" для отсутствующего или null.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Bool — логическое поле; строки "true"/"false" тоже понимаются.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Records — список записей (непагинированный ответ).
type Records []Record
