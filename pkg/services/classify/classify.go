// Package classify turns raw export payloads into canonical resource
// records. Classification is structural: when the caller does not name a
// kind, an ordered list of field-shape predicates decides it from the
// first unwrapped element, and an identifier-prefix fallback catches
// everything the predicates miss.
package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"golang.org/x/exp/maps"
)

var (
	// ErrMalformedInput marks payloads that are not parseable structured
	// data at all. Reported to the caller; never aborts a batch.
	ErrMalformedInput = errors.New("payload is not valid structured data")
	// ErrUnknownKind marks an explicit kind with no registered parser.
	ErrUnknownKind = errors.New("no parser registered for kind")
)

// Payload decodes one raw UTF-8 payload and classifies it. explicitKind
// may be empty, in which case the kind is detected structurally.
func Payload(raw []byte, explicitKind string) ([]domain.ResourceRecord, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return Records(value, explicitKind)
}

// Records classifies one already-decoded value. Unrecognized envelope
// shapes yield an empty sequence, never an error; the only error case is
// an explicit kind that has no registered parser.
func Records(value any, explicitKind string) ([]domain.ResourceRecord, error) {
	elements := unwrap(value)
	if len(elements) == 0 {
		return []domain.ResourceRecord{}, nil
	}

	if explicitKind != "" {
		p, ok := parsers[domain.Kind(explicitKind)]
		if !ok {
			return []domain.ResourceRecord{}, fmt.Errorf("%w: %q", ErrUnknownKind, explicitKind)
		}
		return parseAll(elements, p), nil
	}

	// Only the first element is sampled; a batch is assumed homogeneous.
	if kind, ok := detectKind(normalizeMap(elements[0])); ok {
		return parseAll(elements, parsers[kind]), nil
	}

	records := make([]domain.ResourceRecord, 0, len(elements))
	for _, el := range elements {
		if rec, ok := parseGeneric(normalizeMap(el)); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// unwrap extracts the element sequence from the export tool's envelope
// shapes, checked in order: data-as-array, data.items, data-as-object,
// bare array, bare object. Anything else yields an empty sequence.
func unwrap(value any) []map[string]any {
	if m, ok := value.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			switch d := data.(type) {
			case []any:
				return objects(d)
			case map[string]any:
				if items, ok := d["items"].([]any); ok {
					return objects(items)
				}
				return []map[string]any{d}
			}
		}
		return []map[string]any{m}
	}
	if arr, ok := value.([]any); ok {
		return objects(arr)
	}
	return nil
}

func objects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func parseAll(elements []map[string]any, p parser) []domain.ResourceRecord {
	records := make([]domain.ResourceRecord, 0, len(elements))
	for _, el := range elements {
		records = append(records, p.parse(normalizeMap(el)))
	}
	return records
}

// Kinds lists every kind with a registered parser, sorted.
func Kinds() []domain.Kind {
	kinds := maps.Keys(parsers)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
