package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/alexhholmes/structlayout/internal/parser"
)

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: no schema files given", cli.ErrUsage)
	}
	for _, file := range args {
		if err := dumpFile(cc.Out, file); err != nil {
			return err
		}
	}
	return nil
}

func dumpFile(w io.Writer, filename string) error {
	file, err := parser.ParseFile(filename)
	if err != nil {
		return err
	}

	if len(file.Records) == 0 {
		fmt.Fprintf(w, "%s: no records with @layout annotations found\n", filename)
		return nil
	}

	for _, rec := range file.Records {
		check := rec.Layout.Check
		if check == "" {
			check = "default"
		}
		fmt.Fprintf(w, "\n%s (size=%d, align=%d, check=%s)\n", rec.Name, rec.Layout.Size, rec.Layout.Align, check)
		if len(rec.Derives) > 0 {
			names := make([]string, len(rec.Derives))
			for i, d := range rec.Derives {
				names[i] = d.String()
			}
			fmt.Fprintf(w, "Derives: %s\n", strings.Join(names, ", "))
		}
		fmt.Fprintln(w, "Fields:")
		for _, f := range rec.Fields {
			fmt.Fprintf(w, "  %-15s %-20s @%d %s\n", f.Name, f.Type, f.Layout.Offset, f.Layout.Kinds)
		}
	}
	return nil
}
