package remote

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/rentals/domain"
)

// record is a store object decoded lazily. The store is not consistent about
// field names, so readers take an ordered list of candidates and use the
// first one present and non-null.
type record map[string]json.RawMessage

func (r record) raw(names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		v, ok := r[name]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(string(v)); s == "" || s == "null" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (r record) decode(dst interface{}, names ...string) (bool, error) {
	v, ok := r.raw(names...)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return true, fmt.Errorf("field %s: %w", strings.Join(names, "|"), err)
	}
	return true, nil
}

// str returns the first candidate holding a non-empty string.
func (r record) str(names ...string) (string, bool) {
	for _, name := range names {
		var s string
		if ok, err := r.decode(&s, name); ok && err == nil && s != "" {
			return s, true
		}
	}
	return "", false
}

func (r record) id(names ...string) (domain.ID, error) {
	var id domain.ID
	_, err := r.decode(&id, names...)
	return id, err
}

func (r record) integer(names ...string) (int, error) {
	var n json.Number
	ok, err := r.decode(&n, names...)
	if !ok || err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", strings.Join(names, "|"), err)
	}
	return int(v), nil
}

func (r record) boolean(names ...string) (bool, bool, error) {
	var b bool
	ok, err := r.decode(&b, names...)
	return b, ok, err
}

func (r record) amount(names ...string) (decimal.Decimal, error) {
	var d decimal.Decimal
	ok, err := r.decode(&d, names...)
	if !ok || err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func (r record) date(names ...string) (time.Time, error) {
	s, ok := r.str(names...)
	if !ok {
		return time.Time{}, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", strings.Join(names, "|"), err)
	}
	return t, nil
}

func decodeList[T any](body []json.RawMessage, fn func(record) (T, error)) ([]T, error) {
	out := make([]T, 0, len(body))
	for i, raw := range body {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		item, err := fn(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func wireDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}

func wireAmount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
