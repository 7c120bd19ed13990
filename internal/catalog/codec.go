package catalog

import (
	"encoding/json"
	"fmt"
)

// encodeNames stores an event type list as a JSON array so it survives a
// single TEXT column.
func encodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeNames(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("decode event type list: %w", err)
	}
	return names, nil
}
