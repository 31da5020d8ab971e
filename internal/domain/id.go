package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies a record. The billing backend numbers its rows while the BFF
// and the demo data use string ids, so both a JSON number and a JSON string
// decode into an ID. It always encodes as a string.
type ID string

// UnmarshalJSON accepts 42, "42" and null (empty id).
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as text.
func (id ID) String() string { return string(id) }
