package source

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/okian/trustgraph/pkg/metrics"
)

// flexID accepts an id encoded as a JSON string or number. Anything else
// decodes to the empty id.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = flexID(n.String())
	default:
		*f = ""
	}
	return nil
}

func (f flexID) String() string { return string(f) }

// truthy decodes any JSON value by its truthiness: false, null, 0, "",
// [] and {} are false, everything else is true. Exports flag quotes with
// either a boolean or the quoted post object.
type truthy bool

func (t *truthy) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*t = false
		return nil
	}
	switch b[0] {
	case 'n', 'f':
		*t = false
	case 't':
		*t = true
	case '"':
		*t = len(b) > 2
	case '[', '{':
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		switch c := v.(type) {
		case []any:
			*t = len(c) > 0
		case map[string]any:
			*t = len(c) > 0
		}
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*t = n != 0
	}
	return nil
}

// list decodes a JSON array one element at a time. An element that does not
// fit T is dropped and the rest are kept. A value that is not an array
// decodes to a nil list, null included; an empty array decodes to an empty,
// non-nil list.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		if len(b) > 0 && !bytes.Equal(b, []byte("null")) {
			metrics.RecordEventDropped(DropMissingField)
		}
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(list[T], 0, len(raw))
	for _, elem := range raw {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			metrics.RecordEventDropped(DropMissingField)
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// isNumeric reports whether s is a non-empty run of ASCII digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
