package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// yamlConfig loads a YAML file into a kong resolver. Keys are flag names,
// with either dashes or underscores:
//
//	prefix: staging
//	increment: minor
//	build_number_mode: date
func yamlConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]interface{}{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml config: %w", err)
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("converting yaml config: %w", err)
	}

	return kong.JSON(bytes.NewReader(data))
}
