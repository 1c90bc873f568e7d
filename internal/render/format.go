// Package render turns action results into text for the result panel.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v2"
)

// Format selects how a payload is rendered.
type Format string

const (
	// FormatJSON is indented JSON, the default.
	FormatJSON Format = "json"
	// FormatJSONColor is compact JSON fed to the collapsible tree viewer.
	FormatJSONColor Format = "json_color"
	// FormatYAML is a generic structure dump.
	FormatYAML Format = "yaml"
	// FormatSpew is a verbose dump with types and lengths.
	FormatSpew Format = "spew"
	// FormatGoSyntax is a Go-syntax representation of the value.
	FormatGoSyntax Format = "gosyntax"
)

// Default is used for empty or unknown selectors.
const Default = FormatJSON

// Formats lists the selectable formats in menu order.
var Formats = []Format{FormatJSON, FormatJSONColor, FormatYAML, FormatSpew, FormatGoSyntax}

var labels = map[Format]string{
	FormatJSON:      "JSON",
	FormatJSONColor: "JSON tree",
	FormatYAML:      "YAML",
	FormatSpew:      "Spew dump",
	FormatGoSyntax:  "Go syntax",
}

// Label returns the menu label of f.
func (f Format) Label() string {
	return labels[f]
}

// Names returns the format selectors as strings.
func Names() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// Parse returns the format named s, or Default.
func Parse(s string) Format {
	f := Format(s)
	if _, ok := labels[f]; ok {
		return f
	}
	return Default
}

var spewConfig = spew.ConfigState{
	Indent:                  "    ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Render formats payload. A nil payload renders as an empty string.
func Render(payload any, f Format) (string, error) {
	if payload == nil {
		return "", nil
	}

	switch Parse(string(f)) {
	case FormatJSONColor:
		data, err := marshalJSON(payload)
		if err != nil {
			return "", err
		}
		return string(pretty.Ugly(data)), nil
	case FormatYAML:
		data, err := yaml.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("yaml: %w", err)
		}
		return string(data), nil
	case FormatSpew:
		return spewConfig.Sdump(payload), nil
	case FormatGoSyntax:
		return fmt.Sprintf("%#v", payload), nil
	default:
		data, err := marshalJSON(payload)
		if err != nil {
			return "", err
		}
		return string(pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "    "})), nil
	}
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
