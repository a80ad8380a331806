// Package schema validates the string-valued parameters of registered modules.
//
// A Schema maps parameter names to types. Built-in types are string, int,
// float and bool, lists written "[T]" and carried as comma-separated strings,
// optional fields written "T?", and enumerations written "one_of(a|b)".
//
//	s := schema.Schema{
//	    "hidden_layer_sizes": schema.Slice(schema.Int()),
//	    "layer_norm_hidden":  schema.Opt(schema.Bool()),
//	}
//
//	err := schema.Validate(s, schema.Params(map[string]string{
//	    "hidden_layer_sizes": "256,256",
//	}))
//
// Schemas can also be parsed from type strings, which is how they are stored:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "hidden_layer_sizes": "[int]",
//	    "activation":         "one_of(relu|elu|tanh)?",
//	})
//
// Validate reports missing required fields; ValidateStrict also rejects keys
// the schema does not declare. Failures are returned as an *AggregateError of
// *ValidationError values.
package schema
