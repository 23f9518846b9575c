// Package schema validates a JSON value, or a query result's projected
// values, against a recursive shape description — the schema validator
// spec.md section 6 names as an external collaborator. It is a direct,
// un-distilled port of the original system's schema.rs, fixing the one
// gap that file's validate_json left: Nullable was never matched there,
// so a Nullable schema silently rejected every value. This port accepts
// both Null and the wrapped shape, per spec.md's own documented
// semantics for Nullable.
package schema

import (
	"encoding/json"

	"github.com/badwolf-labs/jsonql/plan"
)

// Kind discriminates a schema Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindNullable
)

// Node is a tagged shape description. Array and Object carry an optional
// element/field-set description: absent (nil) means "any element" or
// "any field set".
type Node struct {
	Kind   Kind
	Elem   *Node           // Array
	Fields map[string]Node // Object
	Inner  *Node           // Nullable
}

func Null() Node   { return Node{Kind: KindNull} }
func Bool() Node   { return Node{Kind: KindBool} }
func Number() Node { return Node{Kind: KindNumber} }
func String() Node { return Node{Kind: KindString} }

// Array describes an array schema. Pass nil for elem to permit any
// element.
func Array(elem *Node) Node { return Node{Kind: KindArray, Elem: elem} }

// Object describes an object schema. Pass nil for fields to permit any
// field set.
func Object(fields map[string]Node) Node { return Node{Kind: KindObject, Fields: fields} }

// NullableOf wraps inner so it additionally accepts JSON null.
func NullableOf(inner Node) Node { return Node{Kind: KindNullable, Inner: &inner} }

// ValidateJSON reports whether v conforms to n.
func (n Node) ValidateJSON(v interface{}) bool {
	switch n.Kind {
	case KindNull:
		return v == nil
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindNumber:
		_, ok := v.(json.Number)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindArray:
		arr, ok := v.([]interface{})
		if !ok {
			return false
		}
		if n.Elem == nil {
			return true
		}
		for _, elem := range arr {
			if !n.Elem.ValidateJSON(elem) {
				return false
			}
		}
		return true
	case KindObject:
		m, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		if n.Fields == nil {
			return true
		}
		for key, fieldSchema := range n.Fields {
			val, present := m[key]
			if !present || !fieldSchema.ValidateJSON(val) {
				return false
			}
		}
		return true
	case KindNullable:
		if v == nil {
			return true
		}
		return n.Inner.ValidateJSON(v)
	default:
		return false
	}
}

// ValidateList reports whether every value in values conforms to the
// schema Node at the same position; mismatched lengths never validate.
func ValidateList(schema []Node, values []interface{}) bool {
	if len(schema) != len(values) {
		return false
	}
	for i, v := range values {
		if !schema[i].ValidateJSON(v) {
			return false
		}
	}
	return true
}

// ValidateSimpleResult validates a Simple result's projected values, in
// projection order, against schema.
func ValidateSimpleResult(schema []Node, result *plan.Result) bool {
	values := make([]interface{}, len(result.Pairs))
	for i, pair := range result.Pairs {
		values[i] = pair.Value
	}
	return ValidateList(schema, values)
}

// ValidateNestedResult validates a Nested result's rows, returning one
// bool per row: false for any row that errored or failed validation.
func ValidateNestedResult(schema []Node, result *plan.Result) []bool {
	out := make([]bool, len(result.Rows))
	for i, row := range result.Rows {
		if row.Err != nil {
			out[i] = false
			continue
		}
		out[i] = ValidateSimpleResult(schema, row.Result)
	}
	return out
}
