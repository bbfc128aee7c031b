package rules

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names the pattern field that supplied the effective pattern.
type Kind string

const (
	KindString  Kind = "string"
	KindRegexp  Kind = "regexp"
	KindLiteral Kind = "literal"
	KindToken   Kind = "token"
)

// Pattern is a rule's pattern declaration. In YAML it is either a bare
// string (shorthand for the string field) or a mapping of the fields below.
// Both shapes decode into this one type, so nothing downstream branches on
// the original form.
type Pattern struct {
	String  string
	Regexp  string
	Literal string
	Token   string

	CaseSensitive bool
	Multiline     bool
}

// StringPattern returns the shorthand form with default flags.
func StringPattern(s string) Pattern {
	return Pattern{String: s, CaseSensitive: true}
}

// kindPrecedence is the order in which pattern fields are consulted. The
// first non-empty one is the effective pattern.
var kindPrecedence = []struct {
	kind  Kind
	field func(Pattern) string
}{
	{KindString, func(p Pattern) string { return p.String }},
	{KindRegexp, func(p Pattern) string { return p.Regexp }},
	{KindLiteral, func(p Pattern) string { return p.Literal }},
	{KindToken, func(p Pattern) string { return p.Token }},
}

// Source returns the effective pattern text and the field it came from.
// ok is false when no field is populated.
func (p Pattern) Source() (kind Kind, text string, ok bool) {
	for _, c := range kindPrecedence {
		if v := c.field(p); v != "" {
			return c.kind, v, true
		}
	}
	return "", "", false
}

// IsEmpty reports whether no pattern field is populated.
func (p Pattern) IsEmpty() bool {
	_, _, ok := p.Source()
	return !ok
}

// Describe renders the effective pattern and its mode flags for humans.
func (p Pattern) Describe() string {
	kind, text, ok := p.Source()
	if !ok {
		return "<empty pattern>"
	}
	var flags []string
	if !p.CaseSensitive {
		flags = append(flags, "case-insensitive")
	}
	if p.Multiline {
		flags = append(flags, "multiline")
	}
	if len(flags) == 0 {
		return fmt.Sprintf("%s: %s", kind, text)
	}
	return fmt.Sprintf("%s: %s (%s)", kind, text, strings.Join(flags, ", "))
}

type patternFields struct {
	String        *string `yaml:"string"`
	Regexp        *string `yaml:"regexp"`
	Literal       *string `yaml:"literal"`
	Token         *string `yaml:"token"`
	CaseSensitive *bool   `yaml:"case_sensitive"`
	Multiline     *bool   `yaml:"multiline"`
}

var patternKeys = map[string]struct{}{
	"string":         {},
	"regexp":         {},
	"literal":        {},
	"token":          {},
	"case_sensitive": {},
	"multiline":      {},
}

// UnmarshalYAML decodes the string-or-mapping pattern union. Unknown keys in
// the mapping form are rejected the same way KnownFields rejects them for
// plain structs.
func (p *Pattern) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return fmt.Errorf("line %d: pattern must be a string or a mapping, got %s", node.Line, node.ShortTag())
		}
		*p = StringPattern(node.Value)
		return nil
	case yaml.MappingNode:
		if err := checkPatternKeys(node); err != nil {
			return err
		}
		var f patternFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		out := Pattern{CaseSensitive: true}
		if f.String != nil {
			out.String = *f.String
		}
		if f.Regexp != nil {
			out.Regexp = *f.Regexp
		}
		if f.Literal != nil {
			out.Literal = *f.Literal
		}
		if f.Token != nil {
			out.Token = *f.Token
		}
		if f.CaseSensitive != nil {
			out.CaseSensitive = *f.CaseSensitive
		}
		if f.Multiline != nil {
			out.Multiline = *f.Multiline
		}
		*p = out
		return nil
	default:
		return fmt.Errorf("line %d: pattern must be a string or a mapping", node.Line)
	}
}

func checkPatternKeys(node *yaml.Node) error {
	var unknown []string
	line := node.Line
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if _, ok := patternKeys[key.Value]; !ok {
			if len(unknown) == 0 {
				line = key.Line
			}
			unknown = append(unknown, key.Value)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("line %d: unknown pattern field(s): %s", line, strings.Join(unknown, ", "))
}
