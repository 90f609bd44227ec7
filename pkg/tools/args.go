// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Arguments is the decoded argument object of a tool call.
type Arguments map[string]any

// Coerce decodes the raw argument string the model emitted. Models
// occasionally send a bare value instead of a JSON object; when the
// string is not a JSON object and fallbackField is set, the raw string
// is wrapped under that field. Coerce never fails: at worst it returns
// an empty argument set.
func Coerce(raw, fallbackField string) Arguments {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Arguments{}
	}

	var args Arguments
	if err := json.Unmarshal([]byte(trimmed), &args); err == nil && args != nil {
		return args
	}

	// Bare JSON string, e.g. `"AAPL"` instead of `{"symbol":"AAPL"}`.
	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err == nil && fallbackField != "" {
		return Arguments{fallbackField: s}
	}

	if fallbackField != "" {
		return Arguments{fallbackField: trimmed}
	}
	return Arguments{}
}

// String returns the argument as a string, or "" when absent or not a
// string-like value.
func (a Arguments) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
	case bool:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

// StringOr returns the argument as a string, or def when absent or empty.
func (a Arguments) StringOr(key, def string) string {
	if s := a.String(key); s != "" {
		return s
	}
	return def
}

// Float returns the argument as a float64 when present.
func (a Arguments) Float(key string) (float64, bool) {
	f, ok := a[key].(float64)
	return f, ok
}
