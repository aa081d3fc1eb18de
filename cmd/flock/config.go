package main

import (
	"encoding/json"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/janreitz/garden/flocking"
)

// loadConfig reads a flocking config from a JSON file. Keys missing from the file keep their defaults and unknown
// keys are an error. An empty path returns the defaults.
func loadConfig(path string) (flocking.Config, error) {
	cfg := flocking.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return flocking.Config{}, errors.Wrap(err, "reading config")
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return flocking.Config{}, errors.Wrapf(err, "parsing config %q", path)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return flocking.Config{}, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return flocking.Config{}, errors.Wrapf(err, "decoding config %q", path)
	}
	if err := cfg.Validate(path); err != nil {
		return flocking.Config{}, err
	}
	return cfg, nil
}
