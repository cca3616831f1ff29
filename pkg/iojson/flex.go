package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString decodes from a JSON string, number or null. Backends written in
// dynamic languages are loose about ids and durations; callers only ever need
// the text form.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("flex string: expected string or number, got %s", data)
		}
		*f = FlexString(n.String())
		return nil
	}
}

// String returns the text form.
func (f FlexString) String() string {
	return string(f)
}
