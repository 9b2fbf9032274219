package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque store-assigned identifier. The zero value means the record
// has not been persisted yet; zero and negative numbers are never valid ids.
type ID struct {
	value int64
}

// NoID is the absent identifier.
var NoID = ID{}

// NewID returns a present identifier, or NoID when v is not positive.
func NewID(v int64) ID {
	if v <= 0 {
		return NoID
	}
	return ID{value: v}
}

// ParseID parses a decimal identifier as typed by an operator.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return NoID, fmt.Errorf("invalid id %q", s)
	}
	return ID{value: v}, nil
}

func (id ID) IsSet() bool { return id.value > 0 }

// Int64 returns the raw value; it is only meaningful when IsSet is true.
func (id ID) Int64() int64 { return id.value }

func (id ID) String() string {
	if !id.IsSet() {
		return ""
	}
	return strconv.FormatInt(id.value, 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if !id.IsSet() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.value, 10)), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = NoID
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// some stores send ids as strings
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		n = json.Number(s)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if v <= 0 {
		return fmt.Errorf("id: %d is not a valid identifier", v)
	}
	id.value = v
	return nil
}
