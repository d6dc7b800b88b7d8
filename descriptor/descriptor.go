// Package descriptor decodes record descriptors from files, OpenAPI
// documents and marked Go structs into record.File values.
package descriptor

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
	"github.com/teranos/recordgen/record"
)

// Format is the encoding of a descriptor file.
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatJSON    Format = "json"
	FormatOpenAPI Format = "openapi"
)

// OpenAPIPrefix forces a path to be read as an OpenAPI document
const OpenAPIPrefix = "openapi:"

// DetectFormat picks the format of path from its prefix and extension.
func DetectFormat(path string) (Format, string, error) {
	if rest, ok := strings.CutPrefix(path, OpenAPIPrefix); ok {
		return FormatOpenAPI, rest, nil
	}
	lower := strings.ToLower(path)
	for _, suffix := range []string{".openapi.yaml", ".openapi.yml", ".openapi.json"} {
		if strings.HasSuffix(lower, suffix) {
			return FormatOpenAPI, path, nil
		}
	}
	switch filepath.Ext(lower) {
	case ".yaml", ".yml":
		return FormatYAML, path, nil
	case ".toml":
		return FormatTOML, path, nil
	case ".json":
		return FormatJSON, path, nil
	}
	return "", path, errors.Newf("cannot tell the descriptor format of %s (want .yaml, .yml, .toml, .json or an OpenAPI document)", path)
}

// Load reads and decodes one descriptor file.
func Load(path string) (record.File, error) {
	format, file, err := DetectFormat(path)
	if err != nil {
		return record.File{}, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return record.File{}, errors.Wrapf(err, "failed to read descriptor %s", file)
	}
	f, err := Decode(data, format, file)
	if err != nil {
		return record.File{}, err
	}
	logger.Debugw("Loaded descriptor",
		logger.FieldFile, file,
		logger.FieldKind, string(format),
		logger.FieldCount, len(f.Records))
	return f, nil
}

// LoadAll expands patterns relative to root and loads every match in
// path order.
func LoadAll(root string, patterns []string) ([]record.File, error) {
	paths, err := Expand(root, patterns)
	if err != nil {
		return nil, err
	}
	files := make([]record.File, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Decode decodes a descriptor document. source names it in diagnostics.
// Unknown keys are rejected in every format.
func Decode(data []byte, format Format, source string) (record.File, error) {
	var f record.File
	var err error
	switch format {
	case FormatYAML:
		err = decodeYAML(data, &f)
	case FormatTOML:
		err = decodeTOML(data, &f)
	case FormatJSON:
		err = decodeJSON(data, &f)
	case FormatOpenAPI:
		return DecodeOpenAPI(data, source)
	default:
		return f, errors.Newf("unknown descriptor format %q", format)
	}
	if err != nil {
		return f, record.NewConfigurationError(source, "", "", "malformed %s descriptor: %v", format, err)
	}
	f.Source = source
	return f, nil
}

func decodeYAML(data []byte, f *record.File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func decodeTOML(data []byte, f *record.File) error {
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.Newf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeJSON(data []byte, f *record.File) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return err
	}
	return nil
}
