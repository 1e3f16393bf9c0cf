// Package config reads the optional verifier configuration file
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thechriswalker/go-verifier/election"
	"github.com/thechriswalker/go-verifier/verifier"
)

// Period selects which part of the catalog runs
type Period string

const (
	PeriodSetup Period = "setup"
	PeriodTally Period = "tally"
	PeriodAll   Period = "all"
)

// Format of a rendered report
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Config of a verification run. Zero values mean "use the default".
type Config struct {
	Workers          int      `yaml:"workers" json:"workers"`
	Exclude          []string `yaml:"exclude" json:"exclude"`
	Period           Period   `yaml:"period" json:"period"`
	MaxVotingOptions int      `yaml:"maxVotingOptions" json:"maxVotingOptions"`
	MinGroupBits     int      `yaml:"minGroupBits" json:"minGroupBits"`
	ReportDB         string   `yaml:"reportDB" json:"reportDB"`
	Format           Format   `yaml:"format" json:"format"`
}

// LoadFile reads a YAML or JSON (by extension) configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses a configuration. ext selects JSON for ".json", YAML otherwise.
func Load(data []byte, ext string) (*Config, error) {
	c := new(Config)
	if strings.ToLower(ext) == ".json" {
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// an empty file decodes to io.EOF
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return c, c.Validate()
}

// WithDefaults fills every unset value
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Period == "" {
		out.Period = PeriodAll
	}
	if out.Format == "" {
		out.Format = FormatText
	}
	if out.MaxVotingOptions == 0 {
		out.MaxVotingOptions = election.DefaultPolicy.MaxVotingOptions
	}
	if out.MinGroupBits == 0 {
		out.MinGroupBits = election.DefaultPolicy.MinGroupBits
	}
	return &out
}

// Validate checks the enumerations and the exclusion list
func (c *Config) Validate() error {
	switch c.Period {
	case "", PeriodSetup, PeriodTally, PeriodAll:
	default:
		return fmt.Errorf("config: unknown period %q", c.Period)
	}
	switch c.Format {
	case "", FormatText, FormatMarkdown, FormatJSON, FormatHTML:
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	if c.Workers < 0 || c.MaxVotingOptions < 0 || c.MinGroupBits < 0 {
		return errors.New("config: negative limits")
	}
	_, err := c.Exclusions()
	return err
}

// Exclusions parses the excluded verification ids
func (c *Config) Exclusions() ([]verifier.ID, error) {
	ids := make([]verifier.ID, 0, len(c.Exclude))
	for _, s := range c.Exclude {
		id, err := verifier.ParseID(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("config: exclude: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Policy for the election context
func (c *Config) Policy() election.Policy {
	d := c.WithDefaults()
	return election.Policy{MaxVotingOptions: d.MaxVotingOptions, MinGroupBits: d.MinGroupBits}
}

// Catalog restricts cat to the configured period
func (c *Config) Catalog(cat *verifier.Catalog) *verifier.Catalog {
	switch c.Period {
	case PeriodSetup:
		return cat.Phase(verifier.PhaseSetup)
	case PeriodTally:
		return cat.Phase(verifier.PhaseTally)
	}
	return cat
}

// RunnerOptions maps the configuration onto the runner
func (c *Config) RunnerOptions() ([]verifier.RunnerOption, error) {
	ids, err := c.Exclusions()
	if err != nil {
		return nil, err
	}
	return []verifier.RunnerOption{verifier.WithWorkers(c.Workers), verifier.WithExclusions(ids...)}, nil
}
