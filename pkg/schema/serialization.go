package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TypeMap returns the schema as field names to type expressions, the inverse
// of ParseTypeMap.
func (s Schema) TypeMap() (map[string]string, error) {
	raw := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = typ.Name()
	}
	return raw, nil
}

// MarshalJSON serializes the schema as {"field": "type"}.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw, err := s.TypeMap()
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// UnmarshalJSON deserializes the schema from {"field": "type"}.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: expected an object of type strings: %w", err)
	}
	return s.fromTypeMap(raw)
}

// MarshalYAML serializes the schema as a mapping of type strings.
func (s Schema) MarshalYAML() (any, error) {
	if s == nil {
		return nil, nil
	}
	return s.TypeMap()
}

// UnmarshalYAML deserializes the schema from a mapping of type strings.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("schema: expected a mapping of type strings: %w", err)
	}
	return s.fromTypeMap(raw)
}

func (s *Schema) fromTypeMap(raw map[string]string) error {
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
