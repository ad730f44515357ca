package apptest

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// JSONPath evaluates expr against doc and returns every match. doc may be
// a decoded value, or JSON text as string, []byte or json.RawMessage.
// Numbers in JSON text decode as float64.
func JSONPath(doc any, expr string) ([]any, error) {
	path, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}

	data, err := decodeDocument(doc)
	if err != nil {
		return nil, err
	}
	return path.Get(data), nil
}

// JSONPathFirst returns the first match of expr in doc. ok is false when
// nothing matched.
func JSONPathFirst(doc any, expr string) (value any, ok bool, err error) {
	results, err := JSONPath(doc, expr)
	if err != nil || len(results) == 0 {
		return nil, false, err
	}
	return results[0], true, nil
}

func decodeDocument(doc any) (any, error) {
	var raw []byte
	switch v := doc.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		return doc, nil
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode JSON document: %w", err)
	}
	return data, nil
}
