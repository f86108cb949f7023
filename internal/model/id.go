package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a task. SQL backends hand out integers, hosted services
// hand out opaque strings; both are carried as text.
//
// In JSON an all-digit ID is written as a number so integer-keyed backends
// keep their wire shape ({"id":1}). Decoding accepts a number or a string.
type ID string

// IDFromInt64 formats an integer key.
func IDFromInt64(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Int64 reports the integer value of the ID, if it has one. Only the
// canonical decimal form counts, so "007" or "+7" stay opaque.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

func (id ID) String() string { return string(id) }

func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int64(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a number or a string: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("id must be an integer: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Scan implements sql.Scanner for integer and text key columns.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*id = IDFromInt64(v)
	case string:
		*id = ID(v)
	case []byte:
		*id = ID(string(v))
	case nil:
		*id = ""
	default:
		return fmt.Errorf("cannot scan %T into model.ID", src)
	}
	return nil
}

// Value implements driver.Valuer; integer IDs are bound as integers.
func (id ID) Value() (driver.Value, error) {
	if n, ok := id.Int64(); ok {
		return n, nil
	}
	return string(id), nil
}
