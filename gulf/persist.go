// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import "go.gulfofmexico.net/storage"

// storedFromValue converts a runtime value into its neutral on-disk
// form. Functions and objects keep only their type tag; they restore
// as undefined.
func storedFromValue(v Value) storage.StoredValue {
	switch v := v.(type) {
	case *Number:
		return storage.StoredValue{Type: "number", Value: v.Val}
	case *String:
		return storage.StoredValue{Type: "string", Value: v.Val}
	case Bool:
		switch v {
		case True:
			return storage.StoredValue{Type: "boolean", Value: true}
		case False:
			return storage.StoredValue{Type: "boolean", Value: false}
		}
		return storage.StoredValue{Type: "boolean", Value: nil}
	case *List:
		elems := make([]interface{}, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = storedFromValue(e)
		}
		return storage.StoredValue{Type: "list", Value: elems}
	case UndefinedType:
		return storage.StoredValue{Type: "undefined"}
	case *Function:
		return storage.StoredValue{Type: "function"}
	case *Object:
		return storage.StoredValue{Type: "object"}
	}
	return storage.StoredValue{Type: "unknown"}
}

// valueFromStored converts an on-disk value back to a runtime value.
// Unknown or partial entries come back as undefined.
func valueFromStored(s storage.StoredValue) Value {
	switch s.Type {
	case "number":
		if f, ok := s.Value.(float64); ok {
			return NewNumber(f)
		}
		return NewNumber(0)
	case "string":
		if str, ok := s.Value.(string); ok {
			return NewString(str)
		}
		return NewString("")
	case "boolean":
		switch b := s.Value.(type) {
		case bool:
			if b {
				return True
			}
			return False
		}
		return Maybe
	case "list":
		var elems []Value
		if arr, ok := s.Value.([]interface{}); ok {
			for _, e := range arr {
				elems = append(elems, valueFromStored(reStore(e)))
			}
		}
		return NewList(elems)
	}
	return Undefined
}

// reStore coerces a decoded JSON element back into a StoredValue.
// Nested list elements decode as generic maps.
func reStore(e interface{}) storage.StoredValue {
	switch e := e.(type) {
	case storage.StoredValue:
		return e
	case map[string]interface{}:
		tag, _ := e["type"].(string)
		return storage.StoredValue{Type: tag, Value: e["value"]}
	}
	return storage.StoredValue{Type: "unknown"}
}

// persistGlobal writes one triple-const global through the store.
// Full confidence persists as a nil fraction.
func (ip *Interp) persistGlobal(name string, v Value, confidence int) error {
	entry := storage.GlobalEntry{Value: storedFromValue(v)}
	if confidence != FullConfidence {
		f := float64(confidence) / FullConfidence
		entry.Confidence = &f
	}
	return ip.store.StoreGlobal(name, entry)
}
