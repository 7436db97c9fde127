package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	FORMAT_TABLE = "table"
	FORMAT_JSON  = "json"
	FORMAT_YAML  = "yaml"
)

func checkOutputFormat() error {
	switch outputFormat {
	case FORMAT_TABLE, FORMAT_JSON, FORMAT_YAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
}

// render writes value as JSON or YAML, or calls table for table output.
func render(w io.Writer, value any, table func(w io.Writer) error) error {
	switch outputFormat {
	case FORMAT_JSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case FORMAT_YAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return table(w)
	}
}
