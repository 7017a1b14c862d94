// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config implements configuration file parsing and validation for
// the metrics daemon.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/open-instrumentation/gometrics/metrics"
)

// Config represents the configuration file the daemon can be started
// with.
type Config struct {
	// Addr is the listen address for the exposition endpoints.
	Addr string `yaml:"addr"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Publish holds the repository-wide publish options.
	Publish PublishConfig `yaml:"publish"`
}

// PublishConfig mirrors metrics.PublishOptions in file form. Unset fields
// keep their defaults.
type PublishConfig struct {
	Scale        *float64  `yaml:"scale"`
	Quantiles    []float64 `yaml:"quantiles"`
	IncludeCount *bool     `yaml:"include_count"`
	IncludeMean  *bool     `yaml:"include_mean"`
	IncludeRates *bool     `yaml:"include_rates"`
}

// ParseConfig returns a valid Config with defaults injected.
func ParseConfig(raw []byte) (*Config, error) {
	var result Config
	if err := yaml.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, result.validateAndInjectDefaults()
}

func (c *Config) validateAndInjectDefaults() error {
	if c.Addr == "" {
		c.Addr = ":8181"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if _, err := metrics.NewQuantiles(c.Publish.Quantiles...); err != nil {
		return err
	}
	return nil
}

// PublishOptions builds the repository-wide publish options the file
// describes, starting from the static defaults.
func (c *Config) PublishOptions() (*metrics.PublishOptions, error) {
	opts := metrics.DefaultPublishOptions()

	if c.Publish.Scale != nil {
		opts.Value.Scale = c.Publish.Scale
		opts.Meter.Scale = c.Publish.Scale
		opts.Histogram.Scale = c.Publish.Scale
		opts.Timer.Scale = c.Publish.Scale
	}
	if len(c.Publish.Quantiles) > 0 {
		qs, err := metrics.NewQuantiles(c.Publish.Quantiles...)
		if err != nil {
			return nil, err
		}
		opts.Histogram.Quantiles = qs
		opts.Timer.Quantiles = qs
	}
	if c.Publish.IncludeCount != nil {
		opts.Histogram.IncludeCount = *c.Publish.IncludeCount
		opts.Timer.IncludeCount = *c.Publish.IncludeCount
	}
	if c.Publish.IncludeMean != nil {
		opts.Meter.IncludeMean = *c.Publish.IncludeMean
		opts.Timer.IncludeMean = *c.Publish.IncludeMean
	}
	if c.Publish.IncludeRates != nil {
		opts.Timer.IncludeRates = *c.Publish.IncludeRates
	}
	return opts, nil
}
