package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aretw0/netspec/pkg/spec"
	"github.com/mitchellh/mapstructure"
)

// FromMap decodes a generic map, such as document frontmatter or tool
// arguments, into m. Keys use the snake_case field names of the text formats;
// unknown keys are an error.
func FromMap(in map[string]any, m spec.Message) error {
	if isNil(m) {
		return fmt.Errorf("from map: nil message")
	}
	resetMessage(m)
	if err := decodeMap(in, m, false); err != nil {
		return fmt.Errorf("decode %s from map: %w", m.MessageName(), err)
	}
	return nil
}

// ToMap is the inverse of FromMap. It goes through JSON so the result holds
// only plain maps, slices and scalars.
func ToMap(m spec.Message) (map[string]any, error) {
	data, err := Marshal(JSON, m)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyOverrides sets fields of m addressed by dotted paths, e.g.
// "composite_optimizer_spec.method1.learning_rate" -> "0.05". Values are
// converted with weak typing; repeated fields take comma-separated values
// that replace the whole sequence. Fields not named keep their current value.
func ApplyOverrides(m spec.Message, overrides map[string]string) error {
	if isNil(m) {
		return fmt.Errorf("apply overrides: nil message")
	}
	if len(overrides) == 0 {
		return nil
	}
	tree := make(map[string]any)
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := setPath(tree, strings.Split(k, "."), overrides[k]); err != nil {
			return fmt.Errorf("override %q: %w", k, err)
		}
	}
	clearAddressedSlices(tree, reflect.ValueOf(m))
	if err := decodeMap(tree, m, true); err != nil {
		return fmt.Errorf("apply overrides to %s: %w", m.MessageName(), err)
	}
	return nil
}

// ParseOverrides splits "a=1,b.c=2" into a map. Values may not contain commas;
// use repeated flags for list-valued fields.
func ParseOverrides(s string) (map[string]string, error) {
	out := make(map[string]string)
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		k, v, err := ParseOverride(pair)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// ParseOverride splits a single "key=value" pair.
func ParseOverride(pair string) (string, string, error) {
	k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("invalid override %q: want key=value", pair)
	}
	return k, strings.TrimSpace(v), nil
}

func setPath(tree map[string]any, path []string, value string) error {
	for i, seg := range path {
		if seg == "" {
			return fmt.Errorf("empty path segment")
		}
		if i == len(path)-1 {
			if _, exists := tree[seg]; exists {
				return fmt.Errorf("conflicts with another override")
			}
			tree[seg] = value
			return nil
		}
		next, exists := tree[seg]
		if !exists {
			child := make(map[string]any)
			tree[seg] = child
			tree = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("conflicts with another override")
		}
		tree = child
	}
	return nil
}

// clearAddressedSlices empties the repeated fields an override tree sets, so
// decoding replaces them instead of writing over their leading elements.
func clearAddressedSlices(tree map[string]any, v reflect.Value) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("mapstructure"), ",")
		child, ok := tree[name]
		if !ok {
			continue
		}
		f := v.Field(i)
		if sub, ok := child.(map[string]any); ok {
			clearAddressedSlices(sub, f)
			continue
		}
		if f.Kind() == reflect.Slice {
			f.Set(reflect.Zero(f.Type()))
		}
	}
}

// nonFiniteHook reads "NaN", "Infinity" and "-Infinity" into doubles, as
// written by ToMap.
func nonFiniteHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}
	if f, ok := parseNonFinite(reflect.ValueOf(data).String()); ok {
		return f, nil
	}
	return data, nil
}

func decodeMap(in map[string]any, out any, weak bool) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: weak,
		DecodeHook:       mapstructure.DecodeHookFuncType(nonFiniteHook),
	}
	if weak {
		cfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.DecodeHookFuncType(nonFiniteHook),
		)
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
