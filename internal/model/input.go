package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numeric is an integer request field that may arrive as a JSON number,
// a numeric string, or not at all.
type Numeric struct {
	raw string
	set bool
}

// NumericInt returns a Numeric holding n.
func NumericInt(n int) Numeric {
	return Numeric{raw: strconv.Itoa(n), set: true}
}

// NumericString returns a Numeric holding the raw text s, as if it had been
// sent as a JSON string.
func NumericString(s string) Numeric {
	b, _ := json.Marshal(s)
	return Numeric{raw: string(b), set: true}
}

// UnmarshalJSON keeps the raw token; coercion happens in Int.
func (n *Numeric) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = Numeric{}
		return nil
	}
	*n = Numeric{raw: s, set: true}
	return nil
}

// MarshalJSON writes the raw token back out.
func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return []byte(n.raw), nil
}

// IsSet reports whether a value was supplied.
func (n Numeric) IsSet() bool { return n.set }

// Int coerces the value to an integer, returning def when it is unset.
// Fractional numbers are truncated toward zero. Strings must hold a base-10
// integer. Any other JSON type fails with ErrInvalidInput.
func (n Numeric) Int(def int) (int, error) {
	if !n.set {
		return def, nil
	}
	switch {
	case strings.HasPrefix(n.raw, `"`):
		var s string
		if err := json.Unmarshal([]byte(n.raw), &s); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidInput, n.raw)
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidInput, s)
		}
		return v, nil
	case n.raw == "true" || n.raw == "false" || strings.HasPrefix(n.raw, "{") || strings.HasPrefix(n.raw, "["):
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, n.raw)
	}
	if v, err := strconv.Atoi(n.raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, n.raw)
	}
	return int(f), nil
}

// AnswerValue is a candidate's answer to one question. Only text answers
// can ever be credited; any other JSON shape is kept as a non-text value.
type AnswerValue struct {
	text   string
	isText bool
}

// Text returns a text answer.
func Text(s string) AnswerValue {
	return AnswerValue{text: s, isText: true}
}

// UnmarshalJSON accepts any JSON value without failing.
func (a *AnswerValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil && strings.HasPrefix(strings.TrimSpace(string(b)), `"`) {
		*a = Text(s)
		return nil
	}
	*a = AnswerValue{}
	return nil
}

// MarshalJSON writes text answers as strings and anything else as null.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if !a.isText {
		return []byte("null"), nil
	}
	return json.Marshal(a.text)
}

// AsText returns the answer text and whether the answer is text.
func (a AnswerValue) AsText() (string, bool) {
	return a.text, a.isText
}

// Answers maps question ids to the candidate's answers.
type Answers map[string]AnswerValue
