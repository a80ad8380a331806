// Package codec encodes and decodes spec records as JSON, YAML or binary
// protobuf wire format.
//
// All three formats preserve field presence: a field explicitly set to its
// default value decodes as set, and an unset field decodes as unset. JSON and
// YAML decoding reject unknown fields; the binary decoder skips them so newer
// writers stay readable. JSON writes NaN and the infinities as the strings
// "NaN", "Infinity" and "-Infinity".
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/netspec/pkg/spec"
	"gopkg.in/yaml.v3"
)

// Format identifies an encoding.
type Format string

const (
	JSON   Format = "json"
	YAML   Format = "yaml"
	Binary Format = "binpb"
)

var (
	// ErrUnknownFormat is returned for format names or file extensions the codec does not handle.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrUnsupportedMessage is returned when a record has no binary encoding.
	ErrUnsupportedMessage = errors.New("unsupported message")
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{JSON, YAML, Binary}
}

// ParseFormat maps a user-supplied name ("json", "yml", "pb", ...) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "binpb", "pb", "bin", "binary":
		return Binary, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Ext returns the canonical file extension, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType returns the MIME type used when serving the format over HTTP.
func (f Format) ContentType() string {
	switch f {
	case YAML:
		return "application/yaml"
	case Binary:
		return "application/x-protobuf"
	default:
		return "application/json"
	}
}

// Marshal encodes m in the given format.
func Marshal(f Format, m spec.Message) ([]byte, error) {
	if isNil(m) {
		return nil, fmt.Errorf("marshal: nil message")
	}
	switch f {
	case JSON:
		data, err := marshalJSON(m)
		if err != nil {
			return nil, fmt.Errorf("marshal %s as json: %w", m.MessageName(), err)
		}
		return append(data, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, fmt.Errorf("marshal %s as yaml: %w", m.MessageName(), err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshal %s as yaml: %w", m.MessageName(), err)
		}
		return buf.Bytes(), nil
	case Binary:
		return marshalBinary(m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Unmarshal decodes data into m, replacing its previous contents.
func Unmarshal(f Format, data []byte, m spec.Message) error {
	if isNil(m) {
		return fmt.Errorf("unmarshal: nil message")
	}
	resetMessage(m)
	switch f {
	case JSON:
		if err := unmarshalJSON(data, m); err != nil {
			return fmt.Errorf("unmarshal %s from json: %w", m.MessageName(), err)
		}
		return nil
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("unmarshal %s from yaml: %w", m.MessageName(), err)
		}
		return nil
	case Binary:
		return unmarshalBinary(data, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Convert re-encodes data from one format to another, decoding into m.
func Convert(data []byte, from, to Format, m spec.Message) ([]byte, error) {
	if err := Unmarshal(from, data, m); err != nil {
		return nil, err
	}
	return Marshal(to, m)
}

func isNil(m spec.Message) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func resetMessage(m spec.Message) {
	v := reflect.ValueOf(m).Elem()
	v.Set(reflect.Zero(v.Type()))
}
