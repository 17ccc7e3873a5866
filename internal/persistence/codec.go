package persistence

import (
	"github.com/goccy/go-json"
)

// EncodeJSON serializes a value for storage. Execution state is JSON-shaped
// map data by construction, so JSON keeps rows inspectable with ordinary
// tooling (the original service stored these columns as JSON too).
func EncodeJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// DecodeJSON deserializes a stored value into out. Empty payloads leave
// out untouched.
func DecodeJSON(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
