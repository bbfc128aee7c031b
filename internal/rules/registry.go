package rules

import (
	"fmt"
	"strings"
)

// Resolve selects rules by a comma-separated list of IDs.
// An empty selector selects every rule. Selected rules keep declaration
// order, and every rule sharing a selected ID is included.
func (c *Config) Resolve(selector string) ([]Rule, error) {
	if c == nil {
		return nil, fmt.Errorf("configuration is nil")
	}
	if strings.TrimSpace(selector) == "" {
		return c.Rules, nil
	}

	want := make(map[string]bool)
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		want[id] = false
	}

	var selected []Rule
	for _, r := range c.Rules {
		if _, ok := want[r.ID]; ok {
			want[r.ID] = true
			selected = append(selected, r)
		}
	}
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if found, ok := want[id]; ok && !found {
			return nil, fmt.Errorf("rule not found: %s", id)
		}
	}
	return selected, nil
}

// Lookup returns the first rule declared with id.
func (c *Config) Lookup(id string) (Rule, bool) {
	if c == nil {
		return Rule{}, false
	}
	for _, r := range c.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
