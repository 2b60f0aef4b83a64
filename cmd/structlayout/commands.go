package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
	"go.uber.org/zap"

	"github.com/alexhholmes/structlayout/internal/driver"
)

type MainConfig struct {
	Verbose bool `cli:"name=v aliases=verbose desc='log progress to stderr'"`

	Main *cli.Command
}

type GenConfig struct {
	*MainConfig

	Config string `cli:"name=config desc='configuration file (default: nearest .structlayout.yaml)'"`
	Check  bool   `cli:"name=check desc='report stale outputs instead of writing them'"`
	Suffix string `cli:"name=suffix desc='generated file suffix (default _layout.go)'"`
	Jobs   int    `cli:"name=j aliases=jobs desc='schema files processed at once'"`

	Gen *cli.Command
}

type DumpConfig struct {
	*MainConfig

	Dump *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "structlayout").
		WithSynopsis("structlayout [opts] command [opts]").
		WithDescription("structlayout generates accessors for records with explicit byte offsets.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return structlayoutMain(cfg, cc, args)
		}).
		WithSubs(
			GenCommand(cfg),
			DumpCommand(cfg))
}

func GenCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GenConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("gen").
		WithAliases("g", "generate").
		WithSynopsis("gen [-check] [-config file] [-suffix s] [-j n] files...").
		WithDescription("generate a record file next to each schema file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return gen(cfg, cc, args)
		})
	cfg.Gen = cmd
	return cmd
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("dump").
		WithAliases("d").
		WithSynopsis("dump files...").
		WithDescription("print the records parsed from schema files").
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
	cfg.Dump = cmd
	return cmd
}

func structlayoutMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("could not create logger: %w", err)
		}
		defer logger.Sync()
		driver.SetLogger(logger)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}
