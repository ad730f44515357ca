package wiremock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// LoadError reports a mapping file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var errNoMappings = errors.New("no mappings found")

// LoadMappingFiles loads every mapping file matching pattern, in lexical
// path order. Patterns may use ** for recursive matching. A pattern that
// matches nothing yields no mappings and no error.
func LoadMappingFiles(pattern string) ([]Mapping, error) {
	matches, err := expandGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var result []Mapping
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		if info.IsDir() {
			continue
		}
		mappings, err := LoadMappingFile(path)
		if err != nil {
			return nil, err
		}
		result = append(result, mappings...)
	}
	return result, nil
}

// LoadMappingFile loads the mappings held in a single JSON or YAML file.
func LoadMappingFile(path string) ([]Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
	}

	mappings, err := ParseMappings(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return mappings, nil
}

// ParseMappings decodes a JSON document holding a single mapping, an array
// of mappings, or a {"mappings": [...]} wrapper. Every mapping is validated.
func ParseMappings(data []byte) ([]Mapping, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errNoMappings
	}

	var mappings []Mapping
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &mappings); err != nil {
			return nil, fmt.Errorf("failed to parse mapping array: %w", err)
		}
	} else {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("failed to parse mapping document: %w", err)
		}
		if raw, ok := probe["mappings"]; ok {
			if err := json.Unmarshal(raw, &mappings); err != nil {
				return nil, fmt.Errorf("failed to parse mappings wrapper: %w", err)
			}
		} else {
			var single Mapping
			if err := json.Unmarshal(trimmed, &single); err != nil {
				return nil, fmt.Errorf("failed to parse mapping: %w", err)
			}
			mappings = []Mapping{single}
		}
	}

	if len(mappings) == 0 {
		return nil, errNoMappings
	}
	for i := range mappings {
		if mappings[i].Response.Status == 0 {
			mappings[i].Response.Status = 200
		}
		if err := mappings[i].Validate(); err != nil {
			return nil, fmt.Errorf("mapping %d (%s): %w", i+1, mappings[i].Request.String(), err)
		}
	}
	return mappings, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share the
// JSON field names of Mapping.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return json.Marshal(doc)
}

// expandGlob uses doublestar for ** patterns and filepath.Glob otherwise.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
