package output

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"goodcheck/internal/logging"
	"goodcheck/internal/rules"
)

// Reporter normalizes records before they reach the sinks. Paths lose a
// leading "./" and matches inside the rule file itself are dropped.
type Reporter struct {
	mgr        *Manager
	configPath string
	log        zerolog.Logger

	mu         sync.Mutex
	matches    int
	problems   int
	suppressed int
}

// NewReporter writes to mgr. configPath is the rule file relative to the scan
// root; matches in it are suppressed.
func NewReporter(mgr *Manager, configPath string) *Reporter {
	return &Reporter{mgr: mgr, configPath: normalizePath(configPath), log: logging.GetLogger("output")}
}

// Match writes m unless it points into the rule file. It reports whether the
// match was written.
func (r *Reporter) Match(m rules.Match) bool {
	m.Path = normalizePath(m.Path)
	if r.configPath != "" && m.Path == r.configPath {
		r.mu.Lock()
		r.suppressed++
		r.mu.Unlock()
		return false
	}
	r.mu.Lock()
	r.matches++
	r.mu.Unlock()
	r.write(m)
	return true
}

// Problem writes p.
func (r *Reporter) Problem(p rules.Problem) {
	p.Path = normalizePath(p.Path)
	r.mu.Lock()
	r.problems++
	r.mu.Unlock()
	r.write(p)
}

// Event writes a lifecycle event.
func (r *Reporter) Event(e Event) {
	r.write(e)
}

// write forwards v to the sinks. A failing sink does not stop the others or
// the scan; the failure is logged.
func (r *Reporter) write(v any) {
	if err := r.mgr.Write(v); err != nil {
		r.log.Error().Err(err).Msg("Failed to write output record")
	}
}

// Counts returns the matches written, problems written and matches suppressed.
func (r *Reporter) Counts() (matches, problems, suppressed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matches, r.problems, r.suppressed
}

func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}
