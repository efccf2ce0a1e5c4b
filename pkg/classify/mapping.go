// Package classify maps normalized export transactions onto ledger entries.
package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Categories holds the optional ledger category ids assigned to generated
// entries. Empty ids leave the entry uncategorized for manual triage.
type Categories struct {
	Interest string `yaml:"interest"`
	Stocks   string `yaml:"stocks"`
	Fees     string `yaml:"fees"`
}

// Mapping is the optional YAML-configured presentation layer: category ids,
// flag colors and fixed payee names for generated entries.
type Mapping struct {
	Categories Categories `yaml:"categories"`
	Flags      struct {
		Interest string `yaml:"interest"`
	} `yaml:"flags"`
	Payees struct {
		Interest   string `yaml:"interest"`
		Fees       string `yaml:"fees"`
		Broker     string `yaml:"broker"`
		Conversion string `yaml:"conversion"`
	} `yaml:"payees"`
}

// DefaultMapping returns the built-in presentation defaults.
func DefaultMapping() *Mapping {
	m := &Mapping{}
	m.Flags.Interest = "purple"
	m.Payees.Interest = "Interest"
	m.Payees.Fees = "Trading 212"
	m.Payees.Broker = "Trading 212"
	m.Payees.Conversion = "Currency conversion"
	return m
}

// LoadMapping reads a mapping file and merges it over the defaults. An empty
// path returns the defaults unchanged.
func LoadMapping(path string) (*Mapping, error) {
	m := DefaultMapping()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	return m, nil
}
