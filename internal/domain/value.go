package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which member of the Value union is set.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindStrings
	KindRecords
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStrings:
		return "strings"
	case KindRecords:
		return "records"
	default:
		return "null"
	}
}

// Value is one field of a search document: null, string, number, bool,
// list of strings or list of records. The zero Value is null.
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
	strs    []string
	recs    []Record
}

// Record is a semi-structured search document.
type Record map[string]Value

func StringValue(s string) Value { return Value{kind: KindString, str: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }
func BoolValue(b bool) Value { return Value{kind: KindBool, boolean: b} }
func StringsValue(s ...string) Value { return Value{kind: KindStrings, strs: s} }
func RecordsValue(r ...Record) Value { return Value{kind: KindRecords, recs: r} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsZero reports whether v is null, which lets `omitzero` drop it.
func (v Value) IsZero() bool { return v.kind == KindNull }

// AsString returns the string member.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the number member. Strings holding a decimal number are
// converted, since some indexes store prices as text. NaN and infinities are
// not numbers.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, finite(v.num)
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || !finite(n) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// AsBool returns the bool member.
func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

// AsStrings returns the string list member.
func (v Value) AsStrings() ([]string, bool) {
	return v.strs, v.kind == KindStrings
}

// AsRecords returns the record list member.
func (v Value) AsRecords() ([]Record, bool) {
	return v.recs, v.kind == KindRecords
}

// Text renders scalars as text: numbers without trailing zeros, bools as
// true/false, null and lists as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	default:
		return ""
	}
}

// Truthy follows the storefront's loose flag semantics: true, a non-zero
// number, a non-empty string other than "0"/"false", or a non-empty list.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		return v.num != 0
	case KindString:
		s := strings.ToLower(strings.TrimSpace(v.str))
		return s != "" && s != "0" && s != "false"
	case KindStrings:
		return len(v.strs) > 0
	case KindRecords:
		return len(v.recs) > 0
	default:
		return false
	}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.boolean == o.boolean
	case KindStrings:
		if len(v.strs) != len(o.strs) {
			return false
		}
		for i := range v.strs {
			if v.strs[i] != o.strs[i] {
				return false
			}
		}
		return true
	case KindRecords:
		if len(v.recs) != len(o.recs) {
			return false
		}
		for i := range v.recs {
			if !v.recs[i].Equal(o.recs[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.boolean)
	case KindStrings:
		if v.strs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.strs)
	case KindRecords:
		if v.recs == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.recs)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value into the union. Arrays made only of
// objects become record lists; arrays of scalars become string lists with
// numbers and bools rendered as text. A lone object becomes a one-element
// record list. Nested arrays and arrays mixing objects with scalars are
// rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty value")
	}

	switch data[0] {
	case 'n':
		*v = Value{}
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case '{':
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*v = RecordsValue(r)
		return nil
	case '[':
		return v.unmarshalArray(data)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberValue(n)
		return nil
	}
}

func (v *Value) unmarshalArray(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	// Nested arrays and arrays mixing objects with scalars have no Value
	// form; the field decodes as null so the rest of the document survives.
	objects := 0
	for _, item := range items {
		item = bytes.TrimSpace(item)
		switch {
		case len(item) > 0 && item[0] == '{':
			objects++
		case len(item) > 0 && item[0] == '[':
			*v = Value{}
			return nil
		}
	}

	if objects > 0 {
		if objects != len(items) {
			*v = Value{}
			return nil
		}
		recs := make([]Record, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &recs[i]); err != nil {
				return err
			}
		}
		*v = RecordsValue(recs...)
		return nil
	}

	strs := make([]string, 0, len(items))
	for _, item := range items {
		var elem Value
		if err := elem.UnmarshalJSON(item); err != nil {
			return err
		}
		if elem.IsNull() {
			continue
		}
		strs = append(strs, elem.Text())
	}
	*v = StringsValue(strs...)
	return nil
}

// Get returns the field or a null Value.
func (r Record) Get(key string) Value {
	return r[key]
}

// Has reports whether the field is present, even when null.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Text returns the field rendered with Value.Text.
func (r Record) Text(key string) string {
	return r[key].Text()
}

// Number returns the field as a number.
func (r Record) Number(key string) (float64, bool) {
	return r[key].AsNumber()
}

// Equal reports deep equality.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
