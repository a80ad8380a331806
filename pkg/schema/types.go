package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Type defines the contract for parameter validation.
//
// Module parameters travel as strings, so every built-in type accepts both the
// native Go value and its string spelling ("64", "0.5", "true").
type Type interface {
	// Name returns the type expression (e.g. "int", "[int]", "float?").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Optional is implemented by types whose field may be absent.
type Optional interface {
	Type
	Elem() Type
}

// StringType accepts any string.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType accepts integers and strings that parse as base-10 integers.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// whole floats come out of JSON decoding
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	case string:
		if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err != nil {
			return fmt.Errorf("expected int, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType accepts numbers and strings that parse as floats.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch v := value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return fmt.Errorf("expected float, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType accepts booleans and the spellings strconv.ParseBool understands.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	switch v := value.(type) {
	case bool:
		return nil
	case string:
		if _, err := strconv.ParseBool(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("expected bool, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected bool, got %T", value)
	}
}

// SliceType validates lists. A string value is split on commas, so
// "256,256" is a valid [int]. The empty string is the empty list.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		for i, elem := range strings.Split(s, ",") {
			if err := t.elemType.Validate(strings.TrimSpace(elem)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected list, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elemType.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// OptionalType marks a field that may be omitted. A present value is
// validated against the wrapped type.
type OptionalType struct {
	elemType Type
}

func (t *OptionalType) Name() string { return t.elemType.Name() + "?" }

func (t *OptionalType) Elem() Type { return t.elemType }

func (t *OptionalType) Validate(value any) error {
	return t.elemType.Validate(value)
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a list type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Opt wraps a type so the field may be omitted.
func Opt(elemType Type) Type {
	if _, ok := elemType.(Optional); ok {
		return elemType
	}
	return &OptionalType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// OneOf accepts exactly one of the listed strings.
func OneOf(values ...string) Type {
	name := "one_of(" + strings.Join(values, "|") + ")"
	return Custom(name, func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		for _, allowed := range values {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of %s", s, strings.Join(values, ", "))
	})
}

// IsOptional reports whether t may be omitted.
func IsOptional(t Type) bool {
	_, ok := t.(Optional)
	return ok
}

// ParseType converts a type expression to a Type.
// Supports "string", "int", "float", "bool", "[T]", "T?" and "one_of(a|b)".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)

	if len(typeStr) > 1 && strings.HasSuffix(typeStr, "?") {
		elem, err := ParseType(typeStr[:len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		if IsOptional(elem) {
			return nil, fmt.Errorf("unsupported type: %s", typeStr)
		}
		return Opt(elem), nil
	}

	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		if IsOptional(elemType) {
			return nil, fmt.Errorf("unsupported type: %s (list elements cannot be optional)", typeStr)
		}
		return Slice(elemType), nil
	}

	if inner, ok := strings.CutPrefix(typeStr, "one_of("); ok && strings.HasSuffix(inner, ")") {
		values := strings.Split(strings.TrimSuffix(inner, ")"), "|")
		for _, v := range values {
			if v == "" {
				return nil, fmt.Errorf("unsupported type: %s (empty choice)", typeStr)
			}
		}
		return OneOf(values...), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field names to type expressions into a Schema.
// Example: {"hidden_layer_sizes": "[int]", "dropout_keep_prob": "float?"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
