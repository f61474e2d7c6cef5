package normalize

import (
	"encoding/json"
	"strconv"
)

// asMap returns v as an object map, or an empty map for anything else.
func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// fieldsOf unwraps the Move "fields" envelope: {fields: {...}} becomes the
// inner map; an already-flat map passes through unchanged.
func fieldsOf(v interface{}) map[string]interface{} {
	m := asMap(v)
	if inner, ok := m["fields"]; ok {
		if im := asMap(inner); len(im) > 0 {
			return im
		}
	}
	return m
}

// moveFields returns the field map of an object's content.
func moveFields(content map[string]interface{}) map[string]interface{} {
	if content == nil {
		return map[string]interface{}{}
	}
	return fieldsOf(content)
}

// vecMapContents returns the entry list of a VecMap-valued field,
// i.e. f[name].fields.contents.
func vecMapContents(f map[string]interface{}, name string) []interface{} {
	inner := fieldsOf(f[name])
	if arr, ok := inner["contents"].([]interface{}); ok {
		return arr
	}
	return nil
}

// entryValueFields unwraps one VecMap entry to the value's field map,
// tolerating entry.fields.value.fields, entry.fields and bare entry shapes.
func entryValueFields(item interface{}) map[string]interface{} {
	ef := fieldsOf(item)
	if v, ok := ef["value"]; ok {
		if vf := fieldsOf(v); len(vf) > 0 {
			return vf
		}
	}
	return ef
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asBool(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

// asUint tolerates the numeric encodings nodes actually emit: JSON numbers,
// decimal strings (u64 fields) and json.Number. Anything else is 0.
func asUint(v interface{}) uint64 {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case string:
		parsed, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	case json.Number:
		parsed, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	case int:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case int64:
		if n < 0 {
			return 0
		}
		return uint64(n)
	case uint64:
		return n
	default:
		return 0
	}
}

func asBoolSlice(v interface{}) []bool {
	arr, ok := v.([]interface{})
	if !ok {
		return []bool{}
	}
	out := make([]bool, len(arr))
	for i, item := range arr {
		out[i] = asBool(item)
	}
	return out
}
