package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

var (
	// ErrAmbiguousInput is returned for a structured document whose
	// top-level object has no single obvious list to ingest.
	ErrAmbiguousInput = errors.New("ambiguous structured input")
	// ErrUnsupportedPayload is returned for structured content that is
	// neither a list nor an object.
	ErrUnsupportedPayload = errors.New("unsupported structured payload")
)

// AmbiguousInputError reports a top-level object that needs a selector key,
// listing the keys available so the caller can choose one.
type AmbiguousInputError struct {
	Keys []string
}

func (e *AmbiguousInputError) Error() string {
	return fmt.Sprintf("top-level object requires a selector key; available keys: %s",
		strings.Join(e.Keys, ", "))
}

func (e *AmbiguousInputError) Unwrap() error { return ErrAmbiguousInput }

// Payload is structured input resolved to its pre-chunked units. Each unit
// is embedded and stored as one chunk, bypassing the text splitter.
type Payload struct {
	Units []string
}

// DecodePayload resolves structured JSON content.
//
// A top-level array is taken as-is: each element becomes one unit. A
// top-level object requires selector to name the key holding the list,
// unless exactly one of its values is a list, which is then used. String
// elements stay verbatim; other values are re-marshalled compactly.
func DecodePayload(r io.Reader, selector string) (*Payload, error) {
	var root any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	switch v := root.(type) {
	case []any:
		return payloadFromList(v)
	case map[string]any:
		return payloadFromObject(v, selector)
	default:
		return nil, fmt.Errorf("%w: top-level %T", ErrUnsupportedPayload, root)
	}
}

// DecodePayloadFile resolves a structured JSON file.
func DecodePayloadFile(path, selector string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	payload, err := DecodePayload(f, selector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return payload, nil
}

func payloadFromList(list []any) (*Payload, error) {
	units := make([]string, 0, len(list))
	for i, item := range list {
		unit, err := unitString(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if strings.TrimSpace(unit) == "" {
			continue
		}
		units = append(units, unit)
	}
	if len(units) == 0 {
		return nil, ErrNoText
	}
	return &Payload{Units: units}, nil
}

func payloadFromObject(obj map[string]any, selector string) (*Payload, error) {
	if selector != "" {
		val, ok := obj[selector]
		if !ok {
			return nil, fmt.Errorf("selector key %q not present in object", selector)
		}
		list, ok := val.([]any)
		if !ok {
			return nil, fmt.Errorf("selector key %q does not hold a list", selector)
		}
		return payloadFromList(list)
	}

	// No selector: a single list value is unambiguous.
	var lists [][]any
	for _, val := range obj {
		if list, ok := val.([]any); ok {
			lists = append(lists, list)
		}
	}
	if len(lists) == 1 {
		return payloadFromList(lists[0])
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, &AmbiguousInputError{Keys: keys}
}

func unitString(item any) (string, error) {
	if s, ok := item.(string); ok {
		return s, nil
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("failed to marshal element: %w", err)
	}
	return string(raw), nil
}
