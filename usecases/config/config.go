//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package config holds the process-lifetime configuration a Context is
// built from: logging, monitoring, backend endpoints and read tuning.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const DefaultBatchRows = 65536

type Config struct {
	Logging    Logging    `json:"logging" yaml:"logging"`
	Monitoring Monitoring `json:"monitoring" yaml:"monitoring"`
	S3         S3         `json:"s3" yaml:"s3"`
	// BatchRows is the row count used when a read requests an
	// automatic batch size.
	BatchRows int64 `json:"batch_rows" yaml:"batch_rows"`
}

type Logging struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type Monitoring struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// S3 configures the s3:// backend. Credentials come from the standard
// AWS environment, never from this file.
type S3 struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Region   string `json:"region" yaml:"region"`
	UseSSL   bool   `json:"use_ssl" yaml:"use_ssl"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging:   Logging{Level: "info", Format: "text"},
		S3:        S3{Endpoint: "s3.amazonaws.com", UseSSL: true},
		BatchRows: DefaultBatchRows,
	}
}

func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return errors.Errorf("logging format must be text or json, got %q", c.Logging.Format)
	}
	if c.BatchRows < 0 {
		return errors.Errorf("batch_rows must be non-negative, got %d", c.BatchRows)
	}
	return nil
}

// LoadYAML reads a config file, layering it over the defaults.
func LoadYAML(path string) (*Config, error) {
	out := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %q", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, errors.Wrapf(err, "parse config file %q", path)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
