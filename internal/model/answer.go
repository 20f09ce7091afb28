package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind tags the shape of a submitted answer value.
type ValueKind string

const (
	KindEmpty  ValueKind = "EMPTY"  // null or never answered
	KindText   ValueKind = "TEXT"   // free text / essay
	KindNumber ValueKind = "NUMBER" // numeric answer
	KindBool   ValueKind = "BOOL"   // true/false answer
	KindList   ValueKind = "LIST"   // multi-select, ordered sequence
	KindObject ValueKind = "OBJECT" // structured answer (matching, fill-in grid)
)

// Answer is a tagged union over the answer shapes a participant can submit.
// List and Object values are kept in canonical JSON form (re-marshalled
// through Go maps, which sorts object keys) so structural equality reduces
// to byte comparison.
type Answer struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	Raw    json.RawMessage
}

// UnmarshalJSON decodes an arbitrary JSON value into the union.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch val := v.(type) {
	case nil:
		*a = Answer{Kind: KindEmpty}
	case string:
		*a = Answer{Kind: KindText, Text: val}
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			// Not representable as float64; keep the literal as text.
			*a = Answer{Kind: KindText, Text: val.String()}
			return nil
		}
		*a = Answer{Kind: KindNumber, Number: n}
	case bool:
		*a = Answer{Kind: KindBool, Bool: val}
	case []interface{}:
		canonical, err := json.Marshal(val)
		if err != nil {
			return err
		}
		*a = Answer{Kind: KindList, Raw: canonical}
	case map[string]interface{}:
		canonical, err := json.Marshal(val)
		if err != nil {
			return err
		}
		*a = Answer{Kind: KindObject, Raw: canonical}
	default:
		*a = Answer{Kind: KindEmpty}
	}
	return nil
}

// MarshalJSON writes the union back in its original JSON shape.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindText:
		return json.Marshal(a.Text)
	case KindNumber:
		return json.Marshal(a.Number)
	case KindBool:
		return json.Marshal(a.Bool)
	case KindList, KindObject:
		return a.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// Present reports whether the answer carries a comparable value.
func (a Answer) Present() bool {
	return a.Kind != KindEmpty && a.Kind != ""
}

// Normalized returns the answer with text trimmed and case-folded.
// Non-text kinds pass through unchanged.
func (a Answer) Normalized() Answer {
	if a.Kind == KindText {
		a.Text = strings.ToLower(strings.TrimSpace(a.Text))
	}
	return a
}

// Canonical returns a canonical serialization used for structural equality.
func (a Answer) Canonical() string {
	switch a.Kind {
	case KindText:
		return strconv.Quote(a.Text)
	case KindNumber:
		return strconv.FormatFloat(a.Number, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(a.Bool)
	case KindList, KindObject:
		return string(a.Raw)
	default:
		return "null"
	}
}

// Equal reports structural equality of two answers after normalization.
// Two text answers match on their normalized strings; any other kind
// combination matches on canonical serialization.
func (a Answer) Equal(b Answer) bool {
	na, nb := a.Normalized(), b.Normalized()
	if na.Kind == KindText && nb.Kind == KindText {
		return na.Text == nb.Text
	}
	return na.Canonical() == nb.Canonical()
}

// TextValue helpers for constructing answers in code and tests.

// TextAnswer builds a text answer.
func TextAnswer(s string) Answer { return Answer{Kind: KindText, Text: s} }

// NumberAnswer builds a numeric answer.
func NumberAnswer(n float64) Answer { return Answer{Kind: KindNumber, Number: n} }

// BoolAnswer builds a boolean answer.
func BoolAnswer(b bool) Answer { return Answer{Kind: KindBool, Bool: b} }

// EmptyAnswer builds an absent answer.
func EmptyAnswer() Answer { return Answer{Kind: KindEmpty} }

// ListAnswer builds a list answer from its canonical JSON encoding.
func ListAnswer(items ...interface{}) Answer {
	raw, _ := json.Marshal(items)
	return Answer{Kind: KindList, Raw: raw}
}
