// Package iojson reads and writes the JSON that commands exchange with
// scripts and other tools.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the shape of a failure written in JSON mode.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// MarshalError renders an Error. When data cannot be marshaled the result
// still carries msg along with the marshal failure.
func MarshalError(msg string, data map[string]any) string {
	bits, err := json.Marshal(Error{Message: msg, Data: data})
	if err != nil {
		msgBytes, _ := json.Marshal(msg)
		errBytes, _ := json.Marshal(err.Error())
		return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
	}
	return string(bits)
}

// WriteError writes err to w as a one-line Error.
func WriteError(w io.Writer, err error, data map[string]any) error {
	_, werr := fmt.Fprintln(w, MarshalError(err.Error(), data))
	return werr
}

// WriteIndent writes obj to w as indented JSON.
func WriteIndent(w io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj as a single line of JSON. Used for JSON-lines output.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
