package seo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type Var struct {
	Key   string
	Value any
}

// Vars is an ordered placeholder set; substitution happens in slice order.
type Vars []Var

func (v Vars) With(key string, value any) Vars {
	return append(v, Var{Key: key, Value: value})
}

// Renderer performs literal {{key}} substitution. It is not a template
// language: there is no escaping, nesting or evaluation, and placeholders
// without a value stay in the output untouched.
type Renderer struct{}

func (Renderer) Render(template string, vars Vars) string {
	out := template
	for _, v := range vars {
		placeholder := "{{" + v.Key + "}}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		out = strings.ReplaceAll(out, placeholder, Stringify(v.Value))
	}
	return out
}

// Stringify renders scalars as plain text and structured values as
// 4-space indented JSON.
func Stringify(value any) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.RawMessage:
		return indentRaw(t)
	case json.Marshaler:
		return prettyJSON(t)
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return prettyJSON(value)
	}
	return fmt.Sprint(rv.Interface())
}

func prettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func indentRaw(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return string(raw)
	}
	return buf.String()
}
