package diag

import (
	"bytes"
	"errors"
	"go/token"
	"strings"
	"testing"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/parser"
)

func TestPrinterError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterColor(&buf, false)

	_, err := parser.ParseSource("schema.go", []byte(`package test

// @layout(size = 8, align = 4)
type Foo struct {
	Bar int32
}
`))
	if err == nil {
		t.Fatal("expected schema error")
	}
	p.Error(err)
	p.Error(errors.New("open missing.go: no such file or directory"))

	want := "schema.go:5:2: error: missing field layout: Foo.Bar: every field must have a `@field(..)` attribute or `layout:\"..\"` tag\n" +
		"error: open missing.go: no such file or directory\n"
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	if errs, warns := p.Counts(); errs != 2 || warns != 0 {
		t.Errorf("Counts() = %d, %d, want 2, 0", errs, warns)
	}
}

func TestPrinterWarning(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterColor(&buf, false)

	p.Warning(analyzer.Finding{
		Pos:        token.Position{Filename: "schema.go", Line: 7, Column: 2},
		Record:     "Foo",
		Field:      "Bar",
		Obligation: analyzer.Bounds,
		Msg:        "field [5, 9) exceeds record size 8",
	})
	p.Summary()

	want := "schema.go:7:2: warning: bounds: Foo.Bar: field [5, 9) exceeds record size 8\n" +
		"0 errors, 1 warning\n"
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrinterColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterColor(&buf, true)
	p.Error(errors.New("boom"))

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestPrinterQuietSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Summary()
	if buf.Len() != 0 {
		t.Errorf("Summary() with no diagnostics wrote %q", buf.String())
	}
	if IsTerminal(&buf) {
		t.Error("a buffer is not a terminal")
	}
}
