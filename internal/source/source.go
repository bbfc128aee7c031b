// Package source enumerates the candidate files of a scan root.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"

	"goodcheck/internal/logging"
)

// DefaultIgnoreFiles are the per-directory ignore files honored by a Source.
var DefaultIgnoreFiles = []string{".gitignore", ".ignore"}

// File is one candidate file.
type File struct {
	// Path is slash-separated and relative to the root.
	Path string
	// Abs is the OS path used to read the file.
	Abs  string
	Size int64
}

// ErrorHandler receives per-entry walk errors. The entry is skipped.
type ErrorHandler func(path string, err error)

// Option configures a Source.
type Option func(*Source)

// WithErrorHandler sets the callback for per-entry walk errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Source) { s.onError = h }
}

// WithIgnoreFiles replaces DefaultIgnoreFiles.
func WithIgnoreFiles(names ...string) Option {
	return func(s *Source) { s.ignoreFiles = names }
}

// Source enumerates the files under one root. The enumeration runs once;
// later calls to Files return the same list.
type Source struct {
	root        string
	ignoreFiles []string
	onError     ErrorHandler

	once  sync.Once
	files []File
	err   error
}

// New returns a Source rooted at root.
func New(root string, opts ...Option) *Source {
	s := &Source{
		root:        root,
		ignoreFiles: DefaultIgnoreFiles,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the scan root.
func (s *Source) Root() string {
	return s.root
}

// Files returns the regular files under the root in lexical path order.
// Hidden entries and paths excluded by ignore files are left out. Only a
// failure to read the root itself is returned as an error.
func (s *Source) Files(ctx context.Context) ([]File, error) {
	s.once.Do(func() {
		s.files, s.err = s.walk(ctx)
	})
	return s.files, s.err
}

type ignoreSet struct {
	// dir is the slash-separated directory the ignore file lives in, "" for the root.
	dir     string
	matcher *ignore.GitIgnore

	// reinclude matches the "!" patterns of the file, so a file that
	// re-includes a path decides it even when nothing in it excludes.
	reinclude *ignore.GitIgnore
}

// decide reports whether the set has an opinion on sub and what it is.
func (set ignoreSet) decide(sub string) (ignored, decided bool) {
	if set.matcher.MatchesPath(sub) {
		return true, true
	}
	if set.reinclude != nil && set.reinclude.MatchesPath(sub) {
		return false, true
	}
	return false, false
}

func (s *Source) walk(ctx context.Context) ([]File, error) {
	log := logging.GetLogger("source")

	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", s.root)
	}

	ignores := map[string][]ignoreSet{}
	var files []File

	err = filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			if rel == "." {
				return walkErr
			}
			s.report(rel, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if rel == "." {
			ignores[""] = s.loadIgnores(p, "")
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if ignored(ignores, rel, true) {
				log.Debug().Str("dir", rel).Msg("Skipping ignored directory")
				return fs.SkipDir
			}
			ignores[rel] = s.loadIgnores(p, rel)
			return nil
		}

		if ignored(ignores, rel, false) {
			return nil
		}

		fi, statErr := os.Stat(p)
		if statErr != nil {
			s.report(rel, statErr)
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		files = append(files, File{Path: rel, Abs: p, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	log.Debug().Str("root", s.root).Int("files", len(files)).Msg("Enumerated candidate files")
	return files, nil
}

func (s *Source) loadIgnores(dirAbs, dirRel string) []ignoreSet {
	var sets []ignoreSet
	for _, name := range s.ignoreFiles {
		p := filepath.Join(dirAbs, name)
		data, err := os.ReadFile(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.report(path.Join(dirRel, name), err)
			}
			continue
		}

		lines := strings.Split(string(data), "\n")
		var negated []string
		for _, line := range lines {
			line = strings.TrimRight(line, "\r")
			if strings.HasPrefix(line, "!") && len(line) > 1 {
				negated = append(negated, line[1:])
			}
		}
		set := ignoreSet{dir: dirRel, matcher: ignore.CompileIgnoreLines(lines...)}
		if len(negated) > 0 {
			set.reinclude = ignore.CompileIgnoreLines(negated...)
		}
		sets = append(sets, set)
	}
	return sets
}

// ignored checks rel against ignore files from the deepest directory up to
// the root, each one matching against the path relative to its own
// directory. The first file with a matching pattern decides, so a deeper
// "!pattern" re-includes what an ancestor excludes. Within one directory the
// later file in ignoreFiles wins.
func ignored(ignores map[string][]ignoreSet, rel string, isDir bool) bool {
	dir := path.Dir(rel)
	for {
		key := dir
		if key == "." {
			key = ""
		}
		sets := ignores[key]
		for i := len(sets) - 1; i >= 0; i-- {
			set := sets[i]
			sub := rel
			if set.dir != "" {
				sub = strings.TrimPrefix(rel, set.dir+"/")
			}
			if isDir {
				sub += "/"
			}
			if ign, decided := set.decide(sub); decided {
				return ign
			}
		}
		if key == "" {
			return false
		}
		dir = path.Dir(dir)
	}
}

func (s *Source) report(rel string, err error) {
	if s.onError != nil {
		s.onError(rel, err)
		return
	}
	log := logging.GetLogger("source")
	log.Warn().Str("path", rel).Err(err).Msg("Skipping unreadable entry")
}
