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

package lifecycle

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/weaviate/somadb/usecases/config"
	"github.com/weaviate/somadb/usecases/monitoring"
)

// Context carries process-lifetime state shared by reference across an
// ownership subtree: configuration, logger, metrics and lazily-built
// backend clients. Objects treat it as read-only; no operation on an
// object ever mutates its context.
type Context struct {
	cfg     *config.Config
	logger  logrus.FieldLogger
	metrics *monitoring.PrometheusMetrics

	mu       sync.Mutex
	backends map[string]Backend
}

// NewContext builds a Context from cfg; a nil cfg means defaults.
func NewContext(cfg *config.Config) (*Context, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	var metrics *monitoring.PrometheusMetrics
	if cfg.Monitoring.Enabled {
		metrics = monitoring.GetMetrics()
	}

	return &Context{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		backends: map[string]Backend{},
	}, nil
}

func (c *Context) Config() *config.Config {
	return c.cfg
}

func (c *Context) Logger() logrus.FieldLogger {
	return c.logger
}

func (c *Context) Metrics() *monitoring.PrometheusMetrics {
	return c.metrics
}

// Backend returns this context's client for a scheme, constructing it on
// first use.
func (c *Context) Backend(scheme string) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.backends[scheme]; ok {
		return b, nil
	}
	ctor, err := backendConstructor(scheme)
	if err != nil {
		return nil, err
	}
	b, err := ctor(c)
	if err != nil {
		return nil, err
	}
	c.backends[scheme] = b
	return b, nil
}
