package schema

import "sort"

// Schema maps parameter names to their expected types.
// Example: {"hidden_layer_sizes": Slice(Int()), "layer_norm_hidden": Opt(Bool())}
type Schema map[string]Type

// Keys returns the declared field names in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks data against the schema. Fields not wrapped in Opt are
// required. Keys the schema does not declare are ignored; see ValidateStrict.
// All failures are reported together, ordered by field name.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error
	for _, fieldName := range schema.Keys() {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			if IsOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "required"})
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateStrict is Validate plus a failure for every key the schema does
// not declare. A nil schema accepts no keys at all.
func ValidateStrict(schema Schema, data map[string]any) error {
	var errs []error
	if err := Validate(schema, data); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}

	unknown := make([]string, 0)
	for key := range data {
		if _, declared := schema[key]; !declared {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, &ValidationError{
			Key:    key,
			Reason: "not defined in schema",
			Value:  data[key],
		})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields validates only specific fields from data against the schema.
// Missing fields are an error unless optional.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []error
	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "not defined in schema"})
			continue
		}

		value, fieldExists := data[fieldName]
		if !fieldExists {
			if !IsOptional(fieldType) {
				errs = append(errs, &ValidationError{Key: fieldName, Reason: "required"})
			}
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Params adapts string-valued module parameters to the map form Validate takes.
func Params(params map[string]string) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
