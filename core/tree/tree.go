// Package tree is a typed, order-preserving in-memory JSON document.
//
// A Value is a tagged union over the JSON kinds. Objects keep their keys in
// document order so a parse and serialize cycle only changes what callers
// change.
package tree

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Field is one key/value member of an object.
type Field struct {
	Key   string
	Value *Value
}

// Value is a node of the document tree.
type Value struct {
	kind   Kind
	b      bool
	num    json.Number
	str    string
	items  []*Value
	fields []Field
}

// Null returns a null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// String returns a string value.
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// Number returns a number value holding the literal n.
func Number(n json.Number) *Value { return &Value{kind: KindNumber, num: n} }

// Int returns a number value for i.
func Int(i int) *Value { return Number(json.Number(strconv.Itoa(i))) }

// Array returns an array of items.
func Array(items ...*Value) *Value { return &Value{kind: KindArray, items: items} }

// Object returns an object with fields in the given order. Duplicate keys keep
// the first position and the last value.
func Object(fields ...Field) *Value {
	v := &Value{kind: KindObject}
	for _, f := range fields {
		v.Set(f.Key, f.Value)
	}
	return v
}

// Kind returns the variant of v. A nil Value reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// Get returns the value stored under key. ok is false when v is not an object
// or has no such key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether v is an object carrying key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Set stores val under key, keeping the key's position if it already exists.
// It is a no-op when v is not an object.
func (v *Value) Set(key string, val *Value) {
	if v.Kind() != KindObject {
		return
	}
	for i := range v.fields {
		if v.fields[i].Key == key {
			v.fields[i].Value = val
			return
		}
	}
	v.fields = append(v.fields, Field{Key: key, Value: val})
}

// Fields returns the object's members in document order.
func (v *Value) Fields() []Field {
	if v.Kind() != KindObject {
		return nil
	}
	return v.fields
}

// Keys returns the object's keys in document order.
func (v *Value) Keys() []string {
	fields := v.Fields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

// Items returns the array's elements, or nil when v is not an array.
func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.items
}

// Len returns the number of members of an object or elements of an array.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindObject:
		return len(v.fields)
	case KindArray:
		return len(v.items)
	}
	return 0
}

// Str returns the string held by v.
func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.str, true
}

// Boolean returns the boolean held by v.
func (v *Value) Boolean() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.b, true
}

// Num returns the number literal held by v.
func (v *Value) Num() (json.Number, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.num, true
}

// Float returns v as a float64 when v is a finite number.
func (v *Value) Float() (float64, bool) {
	n, ok := v.Num()
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// StringOr returns the string under key, or def when the key is missing or does
// not hold a string.
func (v *Value) StringOr(key, def string) string {
	field, ok := v.Get(key)
	if !ok {
		return def
	}
	if s, ok := field.Str(); ok {
		return s
	}
	return def
}
