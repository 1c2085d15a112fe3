package config

import (
	"errors"
	"fmt"
)

var validKinds = map[string]bool{"chain": true, "pool": true, "native": true, "vector": true}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGeneral(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	return c.validateSteps()
}

func (c *Config) validateGeneral() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be a positive integer, got %d", c.Concurrency)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must be set")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path must be set when the journal is enabled")
	}
	return nil
}

func (c *Config) validateSteps() error {
	for i, step := range c.Steps {
		if !validKinds[step.Kind] {
			return fmt.Errorf("step %d: unknown kind %q", i, step.Kind)
		}
		switch step.Mode {
		case "", "minify", "generate":
		default:
			return fmt.Errorf("step %d: mode must be minify or generate, got %q", i, step.Mode)
		}
		if step.Kind == "vector" && step.Mode == "generate" {
			return fmt.Errorf("step %d: vector steps have no generate variant", i)
		}
		if step.Kind == "chain" {
			if len(step.Plugins) == 0 {
				return fmt.Errorf("step %d: chain steps need at least one [[step.plugin]]", i)
			}
			for j, p := range step.Plugins {
				if p.Name == "" {
					return fmt.Errorf("step %d: plugin %d has no name", i, j)
				}
			}
		}
		if step.Workers < 0 {
			return fmt.Errorf("step %d: workers must not be negative", i)
		}
		if step.Resize != nil {
			switch step.Resize.Unit {
			case "", "px", "percent":
			default:
				return fmt.Errorf("step %d: resize unit must be px or percent, got %q", i, step.Resize.Unit)
			}
		}
	}
	return nil
}
