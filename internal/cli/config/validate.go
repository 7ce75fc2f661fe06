package config

import "fmt"

// Validate checks the target and every record definition.
func (c *Config) Validate() error {
	return c.Project().Validate()
}

// RecordDefinition returns the definition of the named record.
func (c *Config) RecordDefinition(name string) (*RecordConfig, error) {
	if rec, ok := c.Records[name]; ok {
		return rec, nil
	}
	if len(c.Records) == 0 {
		return nil, fmt.Errorf("record %q is not configured\nHint: add a records section to leaprecord.yaml", name)
	}
	return nil, fmt.Errorf("record %q is not configured\nAvailable records: %v", name, c.RecordNames())
}

// RecordNames returns the configured record names in sorted order.
func (c *Config) RecordNames() []string {
	return c.Project().RecordNames()
}
