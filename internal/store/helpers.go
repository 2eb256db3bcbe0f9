package store

import "encoding/json"

// marshalDocumentation converts []string to JSON text for storage.
func marshalDocumentation(docs []string) string {
	if len(docs) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(docs)
	return string(b)
}

// unmarshalDocumentation converts JSON text back to []string.
func unmarshalDocumentation(s string) []string {
	if s == "" || s == "null" || s == "[]" {
		return nil
	}
	var docs []string
	_ = json.Unmarshal([]byte(s), &docs)
	return docs
}
