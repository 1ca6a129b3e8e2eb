package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags which member of a FieldValue is populated.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindBoolean
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// FieldValue is a submitted answer (or a rule/default value) decoded from JSON.
// Exactly one of Text, Number, Bool or List is meaningful, selected by Kind.
type FieldValue struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	List   []string
}

// TextValue builds a text FieldValue.
func TextValue(s string) FieldValue { return FieldValue{Kind: KindText, Text: s} }

// NumberValue builds a number FieldValue.
func NumberValue(n float64) FieldValue { return FieldValue{Kind: KindNumber, Number: n} }

// BoolValue builds a boolean FieldValue.
func BoolValue(b bool) FieldValue { return FieldValue{Kind: KindBoolean, Bool: b} }

// ListValue builds a list FieldValue.
func ListValue(items ...string) FieldValue {
	if items == nil {
		items = []string{}
	}
	return FieldValue{Kind: KindList, List: items}
}

// IsNull reports whether the value is JSON null (or the zero FieldValue).
func (v FieldValue) IsNull() bool { return v.Kind == KindNull }

// IsEmpty reports whether the value carries no content: null, "" or [].
func (v FieldValue) IsEmpty() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindText:
		return v.Text == ""
	case KindList:
		return len(v.List) == 0
	default:
		return false
	}
}

// Length returns the rune length of a text value or the size of a list value.
// ok is false for any other kind.
func (v FieldValue) Length() (n int, ok bool) {
	switch v.Kind {
	case KindText:
		return len([]rune(v.Text)), true
	case KindList:
		return len(v.List), true
	default:
		return 0, false
	}
}

func (v FieldValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindList:
		return "[" + strings.Join(v.List, ", ") + "]"
	default:
		return "null"
	}
}

// MarshalJSON encodes the populated member only.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindText:
		return json.Marshal(v.Text)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindBoolean:
		return json.Marshal(v.Bool)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts strings, numbers, booleans, null and arrays of strings.
// Objects and arrays holding anything but strings are rejected.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = FieldValue{}
	case string:
		*v = TextValue(t)
	case bool:
		*v = BoolValue(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		*v = NumberValue(n)
	case []any:
		items := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("list item %d must be a string", i)
			}
			items = append(items, s)
		}
		*v = ListValue(items...)
	default:
		return fmt.Errorf("unsupported value type %T", raw)
	}
	return nil
}

// Answers maps a field id to the submitted value.
type Answers map[string]FieldValue

// Keys returns the answer keys in lexical order so that iteration, and with it
// the first reported failure, is deterministic.
func (a Answers) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
