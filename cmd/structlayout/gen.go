package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/scott-cotton/cli"

	"github.com/alexhholmes/structlayout/internal/config"
	"github.com/alexhholmes/structlayout/internal/diag"
	"github.com/alexhholmes/structlayout/internal/driver"
)

func gen(cfg *GenConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Gen.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: no schema files given", cli.ErrUsage)
	}

	conf, err := cfg.load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, runErr := driver.New(conf, cfg.Check).Run(ctx, args)
	if runErr != nil && results == nil {
		return runErr
	}

	p := diag.NewPrinter(os.Stderr)
	report(p, cc.Out, results)
	p.Summary()

	if runErr != nil {
		errs, _ := p.Counts()
		return fmt.Errorf("%d error(s) in %d schema file(s)", errs, len(args))
	}
	return nil
}

// load reads the configuration file, then applies the flags on top.
func (cfg *GenConfig) load(firstInput string) (config.Config, error) {
	path := cfg.Config
	if path == "" {
		var err error
		path, err = config.Find(filepath.Dir(firstInput))
		if err != nil {
			return config.Config{}, err
		}
	}

	conf := config.Default()
	if path != "" {
		var err error
		conf, err = config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if cfg.Suffix != "" {
		conf.Suffix = cfg.Suffix
	}
	if cfg.Jobs != 0 {
		conf.Jobs = cfg.Jobs
	}
	if err := conf.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return conf, nil
}

func report(p *diag.Printer, out io.Writer, results []*driver.Result) {
	for _, res := range results {
		for _, w := range res.Warnings {
			p.Warning(w)
		}
		for _, d := range res.Deferred {
			p.Warning(d)
		}
		if res.Err == nil {
			continue
		}
		if errors.Is(res.Err, driver.ErrStale) {
			fmt.Fprint(out, res.Diff)
		}
		p.Error(res.Err)
	}
}
