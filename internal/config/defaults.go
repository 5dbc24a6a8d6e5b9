package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const defaultHeader = `# debugkit configuration
#
# log_driver: file | memory | log | sqlite (unknown names fall back to file)
# error_reporting: severity bitmask, 32767 reports everything
`

// RenderYAML renders cfg as a YAML document.
func RenderYAML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultConfigYAML returns the commented default configuration file.
// This is used by `debugkit config init`.
func DefaultConfigYAML() ([]byte, error) {
	body, err := RenderYAML(Default())
	if err != nil {
		return nil, err
	}
	return append([]byte(defaultHeader), body...), nil
}
