// README: Resilient structured-output extraction from LLM responses.
//
// LLM text is syntactically unreliable: fenced, truncated, commented, or
// sloppily quoted. Extraction tries a fixed sequence of strategies and stops
// at the first one that yields data passing validation:
//
//  1. direct parse of the trimmed text
//  2. fenced code blocks and "JSON:" style preambles
//  3. balanced brace/bracket scan
//  4. bounded syntax repair on the scanned candidate
//  5. per-object salvage (array mode only)
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrKind classifies extraction failures.
type ErrKind int

const (
	// NoStructureFound means no parseable object/array was located at all.
	NoStructureFound ErrKind = iota
	// AllObjectsInvalid means structure parsed but nothing passed validation.
	AllObjectsInvalid
	// CountMismatch means strict array mode got a different element count.
	CountMismatch
)

func (k ErrKind) String() string {
	switch k {
	case NoStructureFound:
		return "no structure found"
	case AllObjectsInvalid:
		return "all objects invalid"
	case CountMismatch:
		return "count mismatch"
	}
	return "unknown"
}

// Error is the typed failure returned when every strategy fails.
type Error struct {
	Kind   ErrKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "extract: " + e.Kind.String()
	}
	return fmt.Sprintf("extract: %s: %s", e.Kind, e.Detail)
}

// KindOf returns the error's kind, or -1 when err is not an extraction error.
func KindOf(err error) ErrKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return -1
}

// ObjectSpec describes the expected shape of a single object.
type ObjectSpec struct {
	// RequiredKeys must all be present after defaults are applied.
	RequiredKeys []string
	// Defaults are filled in for absent keys before the required check.
	Defaults map[string]any
}

// ArraySpec describes the expected shape of an array of objects.
type ArraySpec struct {
	// Count is the contractually expected element count (strict mode only).
	Count int
	// Strict rejects the whole result unless exactly Count valid elements
	// survive; any invalid element aborts instead of being dropped.
	Strict       bool
	RequiredKeys []string
	Defaults     map[string]any
	// MinKey is the key a salvaged object must already carry to be considered
	// at all. Empty means the first required key.
	MinKey string
}

func (s ArraySpec) minKey() string {
	if s.MinKey != "" {
		return s.MinKey
	}
	if len(s.RequiredKeys) > 0 {
		return s.RequiredKeys[0]
	}
	return ""
}

// Object extracts a single JSON object from raw LLM output.
func Object(raw string, spec ObjectSpec) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &Error{Kind: NoStructureFound, Detail: "empty input"}
	}

	sawStructure := false
	for _, candidate := range candidates(raw, '{', '}') {
		obj, ok := parseObject(candidate)
		if !ok {
			continue
		}
		sawStructure = true
		if validated, ok := validateObject(obj, spec.RequiredKeys, spec.Defaults); ok {
			return validated, nil
		}
	}

	if sawStructure {
		return nil, &Error{Kind: AllObjectsInvalid, Detail: "object missing required keys"}
	}
	return nil, &Error{Kind: NoStructureFound}
}

// Array extracts an array of JSON objects from raw LLM output.
func Array(raw string, spec ArraySpec) ([]map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &Error{Kind: NoStructureFound, Detail: "empty input"}
	}

	for _, candidate := range candidates(raw, '[', ']') {
		arr, ok := parseArray(candidate)
		if !ok {
			continue
		}
		return validateElements(arr, spec)
	}

	// Step 5: per-object salvage anywhere in the text.
	objs := scanObjects(raw)
	if len(objs) == 0 {
		return nil, &Error{Kind: NoStructureFound}
	}
	var elems []any
	for _, o := range objs {
		elems = append(elems, o)
	}
	return validateElements(elems, spec)
}

// validateElements applies per-element validation and the strict-count policy.
func validateElements(arr []any, spec ArraySpec) ([]map[string]any, error) {
	minKey := spec.minKey()
	var valid []map[string]any

	for _, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			if spec.Strict {
				return nil, &Error{Kind: AllObjectsInvalid, Detail: "non-object element"}
			}
			continue
		}
		if minKey != "" {
			if _, present := obj[minKey]; !present {
				if spec.Strict {
					return nil, &Error{Kind: AllObjectsInvalid, Detail: "element missing " + minKey}
				}
				continue
			}
		}
		validated, ok := validateObject(obj, spec.RequiredKeys, spec.Defaults)
		if !ok {
			if spec.Strict {
				return nil, &Error{Kind: AllObjectsInvalid, Detail: "element missing required keys"}
			}
			continue
		}
		valid = append(valid, validated)
	}

	if spec.Strict && len(valid) != spec.Count {
		return nil, &Error{
			Kind:   CountMismatch,
			Detail: fmt.Sprintf("want %d elements, got %d", spec.Count, len(valid)),
		}
	}
	if len(valid) == 0 {
		return nil, &Error{Kind: AllObjectsInvalid}
	}
	return valid, nil
}

// validateObject fills defaults and checks required keys on a copy.
func validateObject(obj map[string]any, required []string, defaults map[string]any) (map[string]any, bool) {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for k, v := range defaults {
		if _, present := out[k]; !present {
			out[k] = v
		}
	}
	for _, k := range required {
		if _, present := out[k]; !present {
			return nil, false
		}
	}
	return out, true
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func parseArray(s string) ([]any, bool) {
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil, false
	}
	return arr, true
}
