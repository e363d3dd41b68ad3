// Package decode turns serialized documents into diffx value trees. JSON,
// YAML, TOML, INI, XML and CSV are supported
package decode

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/clbanning/mxj/v2"
	"github.com/qri-io/diffx"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format names a serialization format
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
	INI  Format = "ini"
	XML  Format = "xml"
	CSV  Format = "csv"
)

// Formats lists every supported format
var Formats = []Format{JSON, YAML, TOML, INI, XML, CSV}

// ErrUnknownFormat is returned for format names & file extensions that don't
// map to a supported format
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat resolves a format name, case insensitively. "yml" is accepted
// for YAML
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "yml" {
		return YAML, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// InferFormat guesses a format from a file extension. Stdin ("-") can't be
// inferred
func InferFormat(path string) (Format, bool) {
	if path == "-" {
		return "", false
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// Decode parses data in format f
func Decode(f Format, data []byte) (diffx.Value, error) {
	var (
		v   diffx.Value
		err error
	)
	switch f {
	case JSON:
		v, err = decodeJSON(data)
	case YAML:
		v, err = decodeYAML(data)
	case TOML:
		v, err = decodeTOML(data)
	case INI:
		v, err = decodeINI(data)
	case XML:
		v, err = decodeXML(data)
	case CSV:
		v, err = decodeCSV(data)
	default:
		return diffx.Null(), fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return diffx.Null(), fmt.Errorf("parsing %s: %w", strings.ToUpper(string(f)), err)
	}
	return v, nil
}

func decodeJSON(data []byte) (diffx.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return diffx.Null(), err
	}
	if _, err := dec.Token(); err != io.EOF {
		return diffx.Null(), fmt.Errorf("unexpected data after top-level value")
	}
	return diffx.FromInterface(raw)
}

func decodeYAML(data []byte) (diffx.Value, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return diffx.Null(), err
	}
	return diffx.FromInterface(raw)
}

func decodeTOML(data []byte) (diffx.Value, error) {
	raw := map[string]interface{}{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return diffx.Null(), err
	}
	return diffx.FromInterface(raw)
}

// decodeINI maps each section to an object of string values. Section & key
// names are lowercased, keys outside any section land in "default"
func decodeINI(data []byte) (diffx.Value, error) {
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
	if err != nil {
		return diffx.Null(), err
	}

	root := map[string]diffx.Value{}
	for _, sec := range file.Sections() {
		name := strings.ToLower(sec.Name())
		if name == strings.ToLower(ini.DefaultSection) {
			if len(sec.Keys()) == 0 {
				continue
			}
			name = "default"
		}
		fields := map[string]diffx.Value{}
		for _, key := range sec.Keys() {
			fields[key.Name()] = diffx.String(key.String())
		}
		root[name] = diffx.Object(fields)
	}
	return diffx.Object(root), nil
}

// decodeXML maps the element tree to nested objects. Attributes are keyed
// "-name", element text mixed with attributes or children is keyed "#text"
func decodeXML(data []byte) (diffx.Value, error) {
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return diffx.Null(), err
	}
	return diffx.FromInterface(map[string]interface{}(m))
}

// decodeCSV treats the first record as a header row and produces an array of
// objects with string values. Short rows omit their missing columns
func decodeCSV(data []byte) (diffx.Value, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return diffx.Null(), err
	}
	if len(records) == 0 {
		return diffx.Array(), nil
	}

	header := records[0]
	rows := make([]diffx.Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]diffx.Value, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = diffx.String(rec[i])
			}
		}
		rows = append(rows, diffx.Object(row))
	}
	return diffx.Array(rows...), nil
}
