package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyConfig is returned for a rule file with no YAML document in it.
var ErrEmptyConfig = errors.New("configuration is empty")

// ConfigError reports a rule file that is missing, unreadable or does not
// match the schema. It is fatal for a scan.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// document mirrors the YAML layout. Pointers distinguish a missing key from
// an empty value so required keys can be enforced.
type document struct {
	Rules *[]ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	ID            *string  `yaml:"id"`
	Pattern       *Pattern `yaml:"pattern"`
	Message       *string  `yaml:"message"`
	Justification []string `yaml:"justification"`
	Glob          []string `yaml:"glob"`
	Pass          []string `yaml:"pass"`
	Fail          []string `yaml:"fail"`
}

// Load reads and strictly parses the rule file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) && ce.Path == "" {
			ce.Path = path
			return nil, ce
		}
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes a rule file. Unknown keys at any level, wrong value types,
// missing required keys and rules without a usable pattern are errors.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigError{Err: ErrEmptyConfig}
		}
		return nil, &ConfigError{Err: err}
	}
	if doc.Rules == nil {
		return nil, &ConfigError{Err: errors.New("missing field `rules`")}
	}

	cfg := &Config{Rules: make([]Rule, 0, len(*doc.Rules))}
	for i, rd := range *doc.Rules {
		r, err := rd.toRule()
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("rules[%d]: %w", i, err)}
		}
		cfg.Rules = append(cfg.Rules, r)
	}
	return cfg, nil
}

func (rd ruleDoc) toRule() (Rule, error) {
	if rd.ID == nil {
		return Rule{}, errors.New("missing field `id`")
	}
	if rd.Pattern == nil {
		return Rule{}, fmt.Errorf("rule %q: missing field `pattern`", *rd.ID)
	}
	if rd.Message == nil {
		return Rule{}, fmt.Errorf("rule %q: missing field `message`", *rd.ID)
	}
	if rd.Pattern.IsEmpty() {
		return Rule{}, fmt.Errorf("rule %q: pattern has none of string, regexp, literal, token", *rd.ID)
	}
	return Rule{
		ID:            *rd.ID,
		Pattern:       *rd.Pattern,
		Message:       *rd.Message,
		Justification: rd.Justification,
		Glob:          rd.Glob,
		Pass:          rd.Pass,
		Fail:          rd.Fail,
	}, nil
}
