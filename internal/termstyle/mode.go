// Package termstyle decides whether output is colored and paints text.
package termstyle

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode is the user's color choice.
type Mode int

const (
	ModeAuto Mode = iota
	ModeAlways
	ModeNever
)

func (m Mode) String() string {
	switch m {
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseMode parses auto, always or never. An empty value is auto.
func ParseMode(v string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAuto, fmt.Errorf("unknown color mode: %s (must be one of: auto, always, never)", v)
	}
}

// EnvMap turns os.Environ style entries into a map.
func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		if k, v, ok := strings.Cut(entry, "="); ok {
			env[k] = v
		} else {
			env[entry] = ""
		}
	}
	return env
}

// DetectMode resolves auto to always or never.
//
// First match wins:
//  1. TERM=dumb disables colors.
//  2. NO_COLOR disables colors.
//  3. CLICOLOR=0 disables colors.
//  4. CLICOLOR_FORCE or FORCE_COLOR with a non-zero value enables colors.
//  5. Otherwise colors are enabled only when out is a terminal.
func DetectMode(out *os.File, env map[string]string) Mode {
	if env != nil {
		if strings.EqualFold(strings.TrimSpace(env["TERM"]), "dumb") {
			return ModeNever
		}
		if strings.TrimSpace(env["NO_COLOR"]) != "" {
			return ModeNever
		}
		if strings.TrimSpace(env["CLICOLOR"]) == "0" {
			return ModeNever
		}
		if forceColor(env["CLICOLOR_FORCE"]) || forceColor(env["FORCE_COLOR"]) {
			return ModeAlways
		}
	}
	if isTerminal(out) {
		return ModeAlways
	}
	return ModeNever
}

// Enabled reports whether colors should be emitted for mode on out.
func Enabled(mode Mode, out *os.File, env map[string]string) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		return DetectMode(out, env) == ModeAlways
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func forceColor(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}
