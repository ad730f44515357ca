package appbridge

import "slices"

// CleanEmptyValues returns v without nulls, empty strings, empty arrays and
// empty objects, applied recursively. A value that is empty after cleaning
// becomes nil. v is expected to hold decoded JSON; other types pass through.
func CleanEmptyValues(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return t
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if c := CleanEmptyValues(item); c != nil {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			if c := CleanEmptyValues(item); c != nil {
				out[k] = c
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return v
	}
}

// RequestBodyWithoutEmptyValues builds an API request body from action
// input. Keys named in pathParams are dropped since they travel in the URL,
// and every other field is cleaned with CleanEmptyValues. The result is
// never nil; input that is not an object yields an empty body.
func RequestBodyWithoutEmptyValues(input any, pathParams ...string) map[string]any {
	body := map[string]any{}
	fields, _ := input.(map[string]any)
	for k, v := range fields {
		if slices.Contains(pathParams, k) {
			continue
		}
		if c := CleanEmptyValues(v); c != nil {
			body[k] = c
		}
	}
	return body
}
