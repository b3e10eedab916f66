// Package source decodes documents (JSON, JSONC, YAML) into the generic
// value trees goshape checkers consume: map[string]any, []any, string, bool,
// json.Number / int / float64 and nil.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// ErrUnknownFormat is returned for formats Decode does not support.
var ErrUnknownFormat = errors.New("source: unknown format")

// FormatFromPath infers a Format from a file extension. Unknown extensions
// default to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".jsonc":
		return FormatJSONC
	default:
		return FormatJSON
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatJSONC, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Decode decodes b in the given format.
func Decode(b []byte, f Format) (any, error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(b)
	case FormatJSONC:
		return DecodeJSONC(b)
	case FormatYAML:
		return DecodeYAML(b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// ReadFile reads and decodes path, inferring the format from its extension.
func ReadFile(path string) (any, error) {
	return ReadFileAs(path, FormatFromPath(path))
}

// ReadFileAs reads and decodes path in format f.
func ReadFileAs(path string, f Format) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := Decode(b, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// DecodeJSON decodes a single JSON document using go-json. Numbers are kept
// as json.Number so precision is preserved.
func DecodeJSON(b []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: trailing data after document")
	}
	return v, nil
}

// DecodeJSONC decodes JSON with comments and trailing commas.
func DecodeJSONC(b []byte) (any, error) {
	return DecodeJSON(jsonc.ToJSON(b))
}

// DecodeYAML decodes the first YAML document, normalizing mappings to
// map[string]any.
func DecodeYAML(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return NormalizeYAML(v), nil
}

// NormalizeYAML converts YAML-decoded values (which may contain map[any]any)
// into JSON-like values recursively. Non-string keys are rendered with fmt.
func NormalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = NormalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = NormalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = NormalizeYAML(t[i])
		}
		return arr
	default:
		return v
	}
}
