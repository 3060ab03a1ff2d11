// Package verify drives an external IDE in verification mode over every sketch
// in a directory tree.
package verify

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/itohio/golinduino/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// SketchPlaceholder is replaced with the sketch path in the argument template.
const SketchPlaceholder = "{sketch}"

// errStop ends a walk early when the consumer stops iterating.
var errStop = errors.New("stop walk")

// ExitError reports a tool that ran but exited with a non-zero status.
type ExitError struct {
	Path string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Path, e.Code)
}

// Result is the outcome of verifying one sketch.
type Result struct {
	Path     string
	ExitCode int // -1 when the tool could not be run
	Output   []byte
	Duration time.Duration
	Err      error // Process failure: missing executable, timeout
}

// OK reports whether the tool ran and exited with status 0.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Failure returns nil for a successful result, otherwise an error describing it.
func (r Result) Failure() error {
	if r.Err != nil {
		return fmt.Errorf("%s: %w", r.Path, r.Err)
	}
	if r.ExitCode != 0 {
		return &ExitError{Path: r.Path, Code: r.ExitCode}
	}
	return nil
}

// Driver invokes the verification tool once per sketch, one at a time.
type Driver struct {
	fs      afero.Fs
	runner  Runner
	tool    string
	args    []string
	suffix  string
	timeout time.Duration

	log logrus.FieldLogger
}

// New creates a driver. fs is used to discover sketches, runner to execute the tool.
func New(fs afero.Fs, runner Runner, cfg config.VerifyConfig) *Driver {
	def := config.Default().Verify
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Tool == "" {
		cfg.Tool = def.Tool
	}
	if len(cfg.Args) == 0 {
		cfg.Args = def.Args
	}
	if cfg.Suffix == "" {
		cfg.Suffix = def.Suffix
	}

	return &Driver{
		fs:      fs,
		runner:  runner,
		tool:    cfg.Tool,
		args:    cfg.Args,
		suffix:  cfg.Suffix,
		timeout: cfg.Timeout,
		log:     logrus.StandardLogger(),
	}
}

// WithLogger replaces the logger.
func (d *Driver) WithLogger(log logrus.FieldLogger) *Driver {
	d.log = log
	return d
}

// Sketches walks root in lexical order and yields every file whose name ends
// with the configured suffix. Walk errors are yielded and the walk continues.
func (d *Driver) Sketches(ctx context.Context, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := afero.Walk(d.fs, root, func(path string, info os.FileInfo, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if !yield(path, fmt.Errorf("failed to access %s: %w", path, err)) {
					return errStop
				}
				return nil
			}
			if info.IsDir() || !strings.HasSuffix(info.Name(), d.suffix) {
				return nil
			}
			if !yield(path, nil) {
				return errStop
			}
			return nil
		})

		if err != nil && !errors.Is(err, errStop) {
			yield(root, err)
		}
	}
}

// Run verifies every sketch under root and yields one Result per sketch.
// Tool failures are reported in the Result and never stop the run; the error
// slot only carries discovery errors.
func (d *Driver) Run(ctx context.Context, root string) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for path, err := range d.Sketches(ctx, root) {
			if err != nil {
				if !yield(Result{Path: path, ExitCode: -1}, err) {
					return
				}
				continue
			}
			if !yield(d.Verify(ctx, path), nil) {
				return
			}
		}
	}
}

// Verify runs the tool against one sketch.
func (d *Driver) Verify(ctx context.Context, path string) Result {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	args := Args(d.args, path)
	log := d.log.WithField("sketch", path)
	log.WithField("args", args).Debug("running verification")

	start := time.Now()
	output, code, err := d.runner.Run(ctx, d.tool, args...)
	r := Result{
		Path:     path,
		ExitCode: code,
		Output:   output,
		Duration: time.Since(start),
		Err:      err,
	}

	if failure := r.Failure(); failure != nil {
		log.WithError(failure).WithField("exit_code", code).Warn("verification failed")
	} else {
		log.WithField("duration", r.Duration).Info("verification passed")
	}
	return r
}

// Args expands the argument template for one sketch.
func Args(template []string, sketch string) []string {
	out := make([]string, len(template))
	for i, arg := range template {
		out[i] = strings.ReplaceAll(arg, SketchPlaceholder, sketch)
	}
	return out
}

// Summary aggregates verification results.
type Summary struct {
	Total    int
	Passed   int
	Failures []Result
}

// Add records one result.
func (s *Summary) Add(r Result) {
	s.Total++
	if r.OK() {
		s.Passed++
		return
	}
	s.Failures = append(s.Failures, r)
}

// Failed returns the number of failed sketches.
func (s *Summary) Failed() int {
	return len(s.Failures)
}

// Err combines the failures of every sketch, or returns nil when all passed.
func (s *Summary) Err() error {
	var err error
	for _, r := range s.Failures {
		err = multierr.Append(err, r.Failure())
	}
	return err
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d sketches: %d passed, %d failed", s.Total, s.Passed, s.Failed())
}
