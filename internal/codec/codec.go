// Package codec reads and writes family files in YAML or JSON and exposes a
// file-backed graph provider.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lazypower/lineage/internal/api"
)

// Codec converts families to and from one file format.
type Codec interface {
	Decode(r io.Reader) (api.Family, error)
	Encode(f api.Family, w io.Writer) error
	Format() string
}

// YAMLCodec handles .yaml and .yml family files.
type YAMLCodec struct{}

func (YAMLCodec) Format() string { return "yaml" }

// Decode parses a YAML family. An empty document is an empty family.
func (YAMLCodec) Decode(r io.Reader) (api.Family, error) {
	var f api.Family
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return api.Family{}, fmt.Errorf("parse yaml: %w", err)
	}
	return f, nil
}

func (YAMLCodec) Encode(f api.Family, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// JSONCodec handles .json family files.
type JSONCodec struct{}

func (JSONCodec) Format() string { return "json" }

func (JSONCodec) Decode(r io.Reader) (api.Family, error) {
	var f api.Family
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return api.Family{}, fmt.Errorf("parse json: %w", err)
	}
	return f, nil
}

func (JSONCodec) Encode(f api.Family, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ForFormat returns the codec for "yaml", "yml" or "json".
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported family file format %q", format)
}

// ForPath picks a codec from the file extension.
func ForPath(path string) (Codec, error) {
	return ForFormat(filepath.Ext(path))
}
