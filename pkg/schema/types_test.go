package schema

import (
	"errors"
	"testing"
)

func TestStringType(t *testing.T) {
	typ := String()

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"relu", false},
		{"", false},
		{42, true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestIntType(t *testing.T) {
	typ := Int()

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int32(42), false},
		{float64(42), false},
		{float64(42.5), true},
		{"64", false},
		{" -1 ", false},
		{"6.4", true},
		{"sixty", true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestFloatType(t *testing.T) {
	typ := Float()

	tests := []struct {
		value   any
		wantErr bool
	}{
		{0.5, false},
		{42, false},
		{"0.5", false},
		{"1e-4", false},
		{"half", true},
		{false, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestBoolType(t *testing.T) {
	typ := Bool()

	tests := []struct {
		value   any
		wantErr bool
	}{
		{true, false},
		{"true", false},
		{"False", false},
		{"1", false},
		{"yes", true},
		{1, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestSliceType(t *testing.T) {
	intSlice := Slice(Int())

	tests := []struct {
		value   any
		wantErr bool
		desc    string
	}{
		{"256,256", false, "comma separated"},
		{"256, 128 ,64", false, "spaces around elements"},
		{"64", false, "single element"},
		{"", false, "empty list"},
		{"256,x", true, "bad element"},
		{"256,,64", true, "empty element"},
		{[]int{1, 2}, false, "native slice"},
		{[]any{1, "2"}, false, "mixed native slice"},
		{[]any{1, "two"}, true, "bad native element"},
		{3, true, "scalar"},
	}

	for _, tt := range tests {
		err := intSlice.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate(%v) error = %v, wantErr %v", tt.desc, tt.value, err, tt.wantErr)
		}
	}
}

func TestOptionalType(t *testing.T) {
	typ := Opt(Float())

	if typ.Name() != "float?" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "float?")
	}
	if !IsOptional(typ) {
		t.Error("Opt(Float()) should be optional")
	}
	if IsOptional(Float()) {
		t.Error("Float() should not be optional")
	}
	if Opt(typ) != typ {
		t.Error("Opt should not double-wrap")
	}
	if err := typ.Validate("0.5"); err != nil {
		t.Errorf("Validate(0.5) error = %v", err)
	}
	if err := typ.Validate("half"); err == nil {
		t.Error("present values must still match the wrapped type")
	}
}

func TestOneOf(t *testing.T) {
	typ := OneOf("relu", "elu")

	if typ.Name() != "one_of(relu|elu)" {
		t.Errorf("Name() = %q", typ.Name())
	}
	if err := typ.Validate("elu"); err != nil {
		t.Errorf("Validate(elu) error = %v", err)
	}
	if err := typ.Validate("tanh"); err == nil {
		t.Error("Validate(tanh) should fail")
	}
	if err := typ.Validate(1); err == nil {
		t.Error("Validate(1) should fail")
	}
}

func TestCustomType(t *testing.T) {
	errOdd := errors.New("not even")
	evenWidth := Custom("even_int", func(v any) error {
		if err := Int().Validate(v); err != nil {
			return err
		}
		if s, ok := v.(string); ok && len(s) > 0 && (s[len(s)-1]-'0')%2 != 0 {
			return errOdd
		}
		return nil
	})

	if evenWidth.Name() != "even_int" {
		t.Errorf("Name() = %q, want %q", evenWidth.Name(), "even_int")
	}
	if err := evenWidth.Validate("64"); err != nil {
		t.Errorf("Validate(64) error = %v", err)
	}
	if err := evenWidth.Validate("63"); !errors.Is(err, errOdd) {
		t.Errorf("Validate(63) error = %v, want %v", err, errOdd)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"int", false, "int"},
		{" float ", false, "float"},
		{"bool", false, "bool"},
		{"[int]", false, "[int]"},
		{"[[string]]", false, "[[string]]"},
		{"int?", false, "int?"},
		{"[int]?", false, "[int]?"},
		{"one_of(relu|elu)", false, "one_of(relu|elu)"},
		{"one_of(relu|elu)?", false, "one_of(relu|elu)?"},
		{"[int?]", true, ""},
		{"int??", true, ""},
		{"one_of(relu||elu)", true, ""},
		{"?", true, ""},
		{"invalid", true, ""},
		{"[invalid]", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestParseTypeMap(t *testing.T) {
	typeMap := map[string]string{
		"hidden_layer_sizes": "[int]",
		"layer_norm_hidden":  "bool?",
		"dropout_keep_prob":  "float?",
	}

	s, err := ParseTypeMap(typeMap)
	if err != nil {
		t.Fatalf("ParseTypeMap() error = %v", err)
	}
	if len(s) != len(typeMap) {
		t.Errorf("ParseTypeMap() len = %d, want %d", len(s), len(typeMap))
	}
	if s["hidden_layer_sizes"].Name() != "[int]" {
		t.Error("hidden_layer_sizes type should be [int]")
	}
	if !IsOptional(s["layer_norm_hidden"]) {
		t.Error("layer_norm_hidden should be optional")
	}

	if _, err := ParseTypeMap(map[string]string{"activation": "enum"}); err == nil {
		t.Fatal("ParseTypeMap() should return error for invalid type")
	}
}
