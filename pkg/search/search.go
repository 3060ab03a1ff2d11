// Package search finds files in a source tree whose content matches a pattern.
package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar"
	"github.com/itohio/golinduino/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// errStop ends a walk early when the consumer stops iterating.
var errStop = errors.New("stop walk")

// Searcher scans a tree for files whose full content matches a regular expression.
type Searcher struct {
	fs      afero.Fs
	pattern *regexp.Regexp
	include []string

	log logrus.FieldLogger
}

// New creates a Searcher. include holds optional doublestar globs, matched
// against slash-separated paths relative to the search root; when empty every
// file is searched.
func New(fs afero.Fs, pattern string, include []string) (*Searcher, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return &Searcher{
		fs:      fs,
		pattern: re,
		include: include,
		log:     logrus.StandardLogger(),
	}, nil
}

// FromConfig creates a Searcher from the search section of the configuration.
func FromConfig(fs afero.Fs, cfg config.SearchConfig) (*Searcher, error) {
	return New(fs, cfg.Pattern, cfg.Include)
}

// WithLogger replaces the logger.
func (s *Searcher) WithLogger(log logrus.FieldLogger) *Searcher {
	s.log = log
	return s
}

// Files walks root in lexical order and yields the path of every file whose
// content matches. Unreadable files and directories are yielded as errors and
// the walk continues. The sequence is lazy and can be consumed once.
func (s *Searcher) Files(ctx context.Context, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				// afero does not descend into a directory it failed to read.
				if !yield(path, fmt.Errorf("failed to access %s: %w", path, err)) {
					return errStop
				}
				return nil
			}
			if info.IsDir() || !s.included(root, path) {
				return nil
			}

			ok, err := s.matchFile(path)
			if err != nil {
				if !yield(path, err) {
					return errStop
				}
				return nil
			}
			if ok && !yield(path, nil) {
				return errStop
			}
			return nil
		})

		if err != nil && !errors.Is(err, errStop) {
			yield(root, err)
		}
	}
}

// Match reports whether the content of a single file matches.
func (s *Searcher) Match(path string) (bool, error) {
	return s.matchFile(path)
}

func (s *Searcher) matchFile(path string) (bool, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ok := s.pattern.Match(data)
	s.log.WithField("path", path).WithField("match", ok).Debug("searched file")
	return ok, nil
}

func (s *Searcher) included(root, path string) bool {
	if len(s.include) == 0 {
		return true
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, glob := range s.include {
		ok, err := doublestar.Match(glob, rel)
		if err != nil {
			s.log.WithError(err).WithField("glob", glob).Warn("invalid include glob")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
