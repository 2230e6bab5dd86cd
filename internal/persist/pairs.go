package persist

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Pairs encodes a map as an array of [key, value] pairs, sorted by key.
type Pairs[V any] map[string]V

func (p Pairs[V]) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]any{k, p[k]})
	}
	return json.Marshal(out)
}

func (p *Pairs[V]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m := make(Pairs[V], len(raw))
	for i, item := range raw {
		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil {
			return fmt.Errorf("pair %d: %w", i, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("pair %d: want 2 elements, got %d", i, len(pair))
		}
		var key string
		if err := json.Unmarshal(pair[0], &key); err != nil {
			return fmt.Errorf("pair %d key: %w", i, err)
		}
		var v V
		if err := json.Unmarshal(pair[1], &v); err != nil {
			return fmt.Errorf("pair %d value: %w", i, err)
		}
		m[key] = v
	}
	*p = m
	return nil
}
