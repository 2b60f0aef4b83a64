// Package driver runs schema files through parsing, analysis and code
// generation, and writes or checks the generated files.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/codegen"
	"github.com/alexhholmes/structlayout/internal/config"
	"github.com/alexhholmes/structlayout/internal/parser"
)

// ErrStale is reported in check mode for generated files that are missing
// or out of date.
var ErrStale = errors.New("generated file is out of date")

// Result describes one processed schema file.
type Result struct {
	Input  string
	Output string

	// Records is the number of records generated.
	Records int

	Warnings []analyzer.Finding
	Deferred []analyzer.Finding

	// Changed reports that the output was written, or in check mode that
	// it would be.
	Changed bool

	// Diff holds the changes check mode found.
	Diff string

	Err error
}

// Driver processes schema files.
type Driver struct {
	cfg   config.Config
	check bool
}

// New returns a driver. In check mode nothing is written and stale outputs
// are reported with ErrStale.
func New(cfg config.Config, check bool) *Driver {
	if cfg.Suffix == "" {
		cfg.Suffix = config.DefaultSuffix
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return &Driver{cfg: cfg, check: check}
}

// OutputPath names the generated file of a schema file: "foo_schema.go"
// and "foo.go" both become "foo" + suffix.
func OutputPath(input, suffix string) (string, error) {
	if !strings.HasSuffix(input, ".go") || strings.HasSuffix(input, "_test.go") {
		return "", fmt.Errorf("%s: schema files must be non-test .go files", input)
	}
	base := strings.TrimSuffix(input, ".go")
	base = strings.TrimSuffix(base, "_schema")
	out := base + suffix
	if out == input {
		return "", fmt.Errorf("%s: output would overwrite the schema file", input)
	}
	return out, nil
}

// Run processes every file, at most cfg.Jobs at a time. Files are
// independent: a failing file does not stop the others. The returned
// results are in the order of files, and the error joins every per-file
// error.
func (d *Driver) Run(ctx context.Context, files []string) ([]*Result, error) {
	results := make([]*Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = d.Process(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

// Process runs a single schema file.
func (d *Driver) Process(input string) *Result {
	log := Logger().With(zap.String("input", input))
	res := &Result{Input: input}

	out, err := OutputPath(input, d.cfg.Suffix)
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = out

	src, err := d.generate(res)
	if err != nil {
		res.Err = err
		log.Debug("generation failed", zap.Error(err))
		return res
	}

	current, err := os.ReadFile(out)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		res.Err = err
		return res
	}
	res.Changed = !bytes.Equal(current, src)

	switch {
	case !res.Changed:
		log.Debug("up to date", zap.String("output", out))
	case d.check:
		res.Diff = Diff(out, current, src)
		res.Err = fmt.Errorf("%s: %w", out, ErrStale)
		log.Debug("stale", zap.String("output", out))
	default:
		if err := os.WriteFile(out, src, 0o644); err != nil {
			res.Err = err
			return res
		}
		log.Info("wrote", zap.String("output", out), zap.Int("records", res.Records))
	}
	return res
}

// generate parses and analyzes the schema and renders the output file.
func (d *Driver) generate(res *Result) ([]byte, error) {
	file, err := parser.ParseFile(res.Input)
	if err != nil {
		return nil, err
	}
	if len(file.Records) == 0 {
		return nil, fmt.Errorf("%s: no @layout records found", res.Input)
	}

	plans, err := analyzer.AnalyzeFile(file)
	if err != nil {
		return nil, err
	}
	for _, plan := range plans {
		res.Warnings = append(res.Warnings, plan.Warnings...)
		res.Deferred = append(res.Deferred, plan.Deferred...)
	}
	res.Records = len(plans)

	return codegen.GenerateFile(file, plans, codegen.Options{
		Header:   d.cfg.Header,
		BuildTag: d.cfg.BuildTag,
	})
}
