package main

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonpit/pkg/core"
)

// printRecords writes items as one document, a single record or a list,
// in JSON or YAML depending on --yaml.
func printRecords(w io.Writer, items []*core.Item, single bool) error {
	records := make([]core.Record, len(items))
	for i, it := range items {
		records[i] = it.Record()
	}
	var v any = records
	if single && len(records) == 1 {
		v = records[0]
	}

	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
