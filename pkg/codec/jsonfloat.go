package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// JSON has no literal for NaN or the infinities. Like protobuf JSON, such
// doubles are written as the strings "NaN", "Infinity" and "-Infinity" and
// read back from them.

const (
	jsonNaN    = "NaN"
	jsonPosInf = "Infinity"
	jsonNegInf = "-Infinity"
)

func nonFiniteName(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return jsonNaN, true
	case math.IsInf(f, 1):
		return jsonPosInf, true
	case math.IsInf(f, -1):
		return jsonNegInf, true
	}
	return "", false
}

func parseNonFinite(s string) (float64, bool) {
	switch s {
	case jsonNaN:
		return math.NaN(), true
	case jsonPosInf:
		return math.Inf(1), true
	case jsonNegInf:
		return math.Inf(-1), true
	}
	return 0, false
}

// jsonField is one member of a jsonObject.
type jsonField struct {
	key   string
	value any
}

// jsonObject keeps struct field order when encoded.
type jsonObject []jsonField

func (o jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// hasNonFinite reports whether any float64 reachable from v is NaN or infinite.
func hasNonFinite(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return !v.IsNil() && hasNonFinite(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() && hasNonFinite(v.Field(i)) {
				return true
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if hasNonFinite(v.Index(i)) {
				return true
			}
		}
	case reflect.Float64:
		_, ok := nonFiniteName(v.Float())
		return ok
	}
	return false
}

// jsonTree converts v into values encoding/json can always encode, with
// non-finite doubles replaced by their names. It follows the json tags of
// the record types, including omitempty.
func jsonTree(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return jsonTree(v.Elem())
	case reflect.Struct:
		obj := jsonObject{}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			name, omitEmpty, ok := jsonName(sf)
			if !ok {
				continue
			}
			fv := v.Field(i)
			if omitEmpty && isEmptyJSON(fv) {
				continue
			}
			obj = append(obj, jsonField{key: name, value: jsonTree(fv)})
		}
		return obj
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = jsonTree(v.Index(i))
		}
		return out
	case reflect.Float64:
		if name, ok := nonFiniteName(v.Float()); ok {
			return name
		}
		return v.Float()
	default:
		return v.Interface()
	}
}

func jsonName(sf reflect.StructField) (name string, omitEmpty, ok bool) {
	if !sf.IsExported() {
		return "", false, false
	}
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}
	return name, strings.Contains(","+opts+",", ",omitempty,"), true
}

func isEmptyJSON(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	}
	return v.IsZero()
}

func marshalJSON(m any) ([]byte, error) {
	v := reflect.ValueOf(m)
	if !hasNonFinite(v) {
		return json.MarshalIndent(m, "", "  ")
	}
	return json.MarshalIndent(jsonTree(v), "", "  ")
}

// nonFinitePatch records a double that was named in the input.
type nonFinitePatch struct {
	path  []any // string field names and int slice indexes
	value float64
}

// unmarshalJSON decodes data into m, accepting "NaN", "Infinity" and
// "-Infinity" wherever a double is expected.
func unmarshalJSON(data []byte, m any) error {
	if !bytes.Contains(data, []byte(jsonNaN)) && !bytes.Contains(data, []byte(jsonPosInf)) {
		return decodeStrictJSON(data, m)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return err
	}
	var patches []nonFinitePatch
	tree = extractNonFinite(tree, reflect.TypeOf(m), nil, &patches)
	if len(patches) == 0 {
		return decodeStrictJSON(data, m)
	}

	cleaned, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	if err := decodeStrictJSON(cleaned, m); err != nil {
		return err
	}
	for _, p := range patches {
		if err := setFloatAt(reflect.ValueOf(m), p.path, p.value); err != nil {
			return err
		}
	}
	return nil
}

func decodeStrictJSON(data []byte, m any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(m)
}

// extractNonFinite walks a generic JSON tree alongside type t and replaces
// named non-finite doubles with 0, recording where they go.
func extractNonFinite(node any, t reflect.Type, path []any, patches *[]nonFinitePatch) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		obj, ok := node.(map[string]any)
		if !ok {
			return node
		}
		for i := 0; i < t.NumField(); i++ {
			name, _, ok := jsonName(t.Field(i))
			if !ok {
				continue
			}
			if child, exists := obj[name]; exists {
				obj[name] = extractNonFinite(child, t.Field(i).Type, appendPath(path, name), patches)
			}
		}
		return obj
	case reflect.Slice:
		list, ok := node.([]any)
		if !ok {
			return node
		}
		for i, child := range list {
			list[i] = extractNonFinite(child, t.Elem(), appendPath(path, i), patches)
		}
		return list
	case reflect.Float64:
		if s, ok := node.(string); ok {
			if f, ok := parseNonFinite(s); ok {
				*patches = append(*patches, nonFinitePatch{path: path, value: f})
				return json.Number("0")
			}
		}
	}
	return node
}

func appendPath(path []any, step any) []any {
	out := make([]any, len(path), len(path)+1)
	copy(out, path)
	return append(out, step)
}

func setFloatAt(v reflect.Value, path []any, f float64) error {
	for _, step := range path {
		for v.Kind() == reflect.Pointer {
			v = v.Elem()
		}
		switch s := step.(type) {
		case string:
			field, ok := fieldByJSONName(v, s)
			if !ok {
				return fmt.Errorf("no field %q in %s", s, v.Type())
			}
			v = field
		case int:
			v = v.Index(s)
		}
	}
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	v.SetFloat(f)
	return nil
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if n, _, ok := jsonName(t.Field(i)); ok && n == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
