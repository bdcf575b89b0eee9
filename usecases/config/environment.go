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

package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// FromEnv overlays SOMADB_* environment variables onto c.
func FromEnv(c *Config) error {
	if v := os.Getenv("SOMADB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SOMADB_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SOMADB_MONITORING_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "parse SOMADB_MONITORING_ENABLED")
		}
		c.Monitoring.Enabled = enabled
	}
	if v := os.Getenv("SOMADB_S3_ENDPOINT"); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv("SOMADB_S3_REGION"); v != "" {
		c.S3.Region = v
	}
	if v := os.Getenv("SOMADB_S3_USE_SSL"); v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "parse SOMADB_S3_USE_SSL")
		}
		c.S3.UseSSL = useSSL
	}
	if v := os.Getenv("SOMADB_BATCH_ROWS"); v != "" {
		rows, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "parse SOMADB_BATCH_ROWS")
		}
		c.BatchRows = rows
	}
	return c.Validate()
}
