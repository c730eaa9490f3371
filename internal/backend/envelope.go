package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope holds a decoded reply so callers can pull named fields out of it.
// The CRM is inconsistent about wrapping: some replies put the entity under
// its own name, some under "data", some at the top level.
type envelope map[string]json.RawMessage

// pick decodes the first present key into out. With no key present the whole
// body is decoded, which covers unwrapped replies.
func (e envelope) pick(out any, keys ...string) error {
	for _, key := range keys {
		if raw, ok := e[key]; ok && !isNull(raw) {
			return json.Unmarshal(raw, out)
		}
	}
	if data, ok := e["data"]; ok && !isNull(data) {
		var nested envelope
		if json.Unmarshal(data, &nested) == nil {
			for _, key := range keys {
				if raw, ok := nested[key]; ok && !isNull(raw) {
					return json.Unmarshal(raw, out)
				}
			}
		}
		return json.Unmarshal(data, out)
	}
	whole, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return json.Unmarshal(whole, out)
}

// has reports whether key is present and not null.
func (e envelope) has(key string) bool {
	raw, ok := e[key]
	return ok && !isNull(raw)
}

func (e envelope) page(collection string) (Page, error) {
	var page Page
	var items []map[string]any
	if err := e.pick(&items, collection, "items"); err != nil {
		return page, fmt.Errorf("decode %s: %w", collection, err)
	}
	if items == nil {
		items = []map[string]any{}
	}
	page.Items = items
	if raw, ok := e["pagination"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &page.Pagination); err != nil {
			return page, fmt.Errorf("decode pagination: %w", err)
		}
	}
	return page, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
