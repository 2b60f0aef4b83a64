package codegen

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/tools/imports"

	"github.com/alexhholmes/structlayout/internal/analyzer"
	"github.com/alexhholmes/structlayout/internal/parser"
)

// DefaultBuildTag excludes the generated file from schema builds, the
// mirror image of the constraint carried by schema files.
const DefaultBuildTag = "!structlayout"

// Generator generates the record type, accessors and derived methods of a
// single record
type Generator struct {
	plan   *analyzer.Plan
	record *parser.Record
}

// NewGenerator creates a new code generator
func NewGenerator(plan *analyzer.Plan) *Generator {
	return &Generator{plan: plan, record: plan.Record}
}

// Generate returns the generated code for this record (without package
// header/imports)
func (g *Generator) Generate() (string, error) {
	if g.plan == nil || g.record == nil {
		return "", fmt.Errorf("generator has no plan")
	}

	var code strings.Builder

	code.WriteString(g.generateType())
	code.WriteString("\n")

	for _, fp := range g.plan.Fields {
		for _, acc := range fp.Accessors {
			code.WriteString(g.generateAccessor(fp, acc))
			code.WriteString("\n")
		}
	}

	// Derived behaviors in declaration order
	for _, d := range g.record.Derives {
		switch d {
		case parser.BitwiseCopy:
			code.WriteString(g.generateCopy())
		case parser.Clone:
			code.WriteString(g.generateClone())
		case parser.DebugFormat:
			code.WriteString(g.generateDebug())
		case parser.DefaultConstruct:
			code.WriteString(g.generateDefault())
		default:
			return "", fmt.Errorf("%s: unknown derive %v", g.record.Name, d)
		}
		code.WriteString("\n")
	}

	return code.String(), nil
}

// alignMarker returns the zero-size field that forces the record alignment.
func alignMarker(align uint64) string {
	switch align {
	case 2:
		return "[0]uint16"
	case 4:
		return "[0]uint32"
	case 8:
		return "[0]uint64"
	default:
		return ""
	}
}

// generateType generates the record type, its alignment assertion and its
// capability bound type
func (g *Generator) generateType() string {
	var code strings.Builder
	name := g.record.Name
	layout := g.record.Layout

	writeDoc(&code, g.record.Doc)
	code.WriteString(fmt.Sprintf("type %s struct {\n", name))
	if marker := alignMarker(layout.Align); marker != "" {
		code.WriteString(fmt.Sprintf("\t_   %s\n", marker))
	}
	code.WriteString(fmt.Sprintf("\t%s [%d]byte\n", analyzer.BufferField, layout.Size))
	code.WriteString("}\n\n")

	// Alignof must be exactly the requested alignment
	code.WriteString("const (\n")
	code.WriteString(fmt.Sprintf("\t_ = unsafe.Alignof(%s{}) - %d\n", name, layout.Align))
	code.WriteString(fmt.Sprintf("\t_ = %d - unsafe.Alignof(%s{})\n", layout.Align, name))
	code.WriteString(")\n\n")

	// Always multi-line: gofmt only keeps short interfaces on one line
	code.WriteString(fmt.Sprintf("type %s[T interface {\n\t%s\n}] struct{}\n", g.plan.BoundType, g.plan.Bound))

	return code.String()
}

func (g *Generator) generateAccessor(fp analyzer.FieldPlan, acc analyzer.Accessor) string {
	var code strings.Builder
	field := fp.Field
	name := g.record.Name
	off := field.Layout.Offset

	// The field doc follows the generated line unless it already
	// describes this accessor by name
	switch {
	case len(field.Doc) == 0:
		code.WriteString(accessorComment(acc, field))
	case strings.HasPrefix(parser.CleanComment(field.Doc[0]), acc.Name+" "):
		writeDoc(&code, field.Doc)
	default:
		code.WriteString(accessorComment(acc, field))
		code.WriteString("//\n")
		writeDoc(&code, field.Doc)
	}

	switch acc.Kind {
	case parser.Read:
		code.WriteString(fmt.Sprintf("func (r *%s) %s() (v %s) {\n", name, acc.Name, field.Type))
		code.WriteString(g.obligations(acc, field, "v"))
		code.WriteString(fmt.Sprintf("\tcopy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)), r.%s[%d:])\n", analyzer.BufferField, off))
		code.WriteString("\treturn v\n")
	case parser.Write:
		code.WriteString(fmt.Sprintf("func (r *%s) %s(v %s) *%s {\n", name, acc.Name, field.Type, name))
		code.WriteString(g.obligations(acc, field, "v"))
		code.WriteString(fmt.Sprintf("\tcopy(r.%s[%d:], unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)))\n", analyzer.BufferField, off))
		code.WriteString("\treturn r\n")
	case parser.BorrowImmutable, parser.BorrowMutable:
		code.WriteString(fmt.Sprintf("func (r *%s) %s() *%s {\n", name, acc.Name, field.Type))
		code.WriteString(fmt.Sprintf("\tp := (*%s)(unsafe.Add(unsafe.Pointer(&r.%s), %d))\n", field.Type, analyzer.BufferField, off))
		code.WriteString(g.obligations(acc, field, "*p"))
		code.WriteString("\treturn p\n")
	}
	code.WriteString("}\n")

	return code.String()
}

// obligations renders the constant assertions of an accessor. Each one is
// an unsigned constant expression that underflows when the condition does
// not hold, so the host compiler rejects the accessor.
func (g *Generator) obligations(acc analyzer.Accessor, field parser.Field, value string) string {
	var code strings.Builder
	off := field.Layout.Offset

	for _, o := range acc.Obligations {
		switch o {
		case analyzer.Bounds:
			code.WriteString(fmt.Sprintf("\tconst _ = uintptr(%d) - (%d + unsafe.Sizeof(%s))\n", g.record.Layout.Size, off, value))
		case analyzer.FieldAlign:
			code.WriteString(fmt.Sprintf("\tconst _ = -(uintptr(%d) %% unsafe.Alignof(%s))\n", off, value))
		case analyzer.RecordAlign:
			code.WriteString(fmt.Sprintf("\tconst _ = -(unsafe.Alignof(*r) %% unsafe.Alignof(%s))\n", value))
		case analyzer.Capability:
			code.WriteString(fmt.Sprintf("\tvar _ %s[%s]\n", g.plan.BoundType, field.Type))
		}
	}

	return code.String()
}

func accessorComment(acc analyzer.Accessor, field parser.Field) string {
	off := field.Layout.Offset
	switch acc.Kind {
	case parser.Read:
		return fmt.Sprintf("// %s returns the %s at offset %d.\n", acc.Name, field.Type, off)
	case parser.Write:
		return fmt.Sprintf("// %s stores v at offset %d.\n", acc.Name, off)
	case parser.BorrowImmutable:
		return fmt.Sprintf("// %s returns a pointer to the %s at offset %d for reading.\n", acc.Name, field.Type, off)
	case parser.BorrowMutable:
		return fmt.Sprintf("// %s returns a pointer to the %s at offset %d.\n", acc.Name, field.Type, off)
	}
	return ""
}

// generateCopy generates CopyTo() for the Copy derive
func (g *Generator) generateCopy() string {
	var code strings.Builder
	name := g.record.Name

	code.WriteString(fmt.Sprintf("// CopyTo copies every byte of the %s into dst and returns dst.\n", name))
	code.WriteString(fmt.Sprintf("func (r *%s) CopyTo(dst *%s) *%s {\n", name, name, name))
	code.WriteString("\t*dst = *r\n")
	code.WriteString("\treturn dst\n")
	code.WriteString("}\n")

	return code.String()
}

// generateClone generates Clone() for the Clone derive
func (g *Generator) generateClone() string {
	var code strings.Builder
	name := g.record.Name

	code.WriteString(fmt.Sprintf("// Clone creates a copy of the %s\n", name))
	code.WriteString(fmt.Sprintf("func (r *%s) Clone() *%s {\n", name, name))
	code.WriteString("\tc := *r\n")
	code.WriteString("\treturn &c\n")
	code.WriteString("}\n")

	return code.String()
}

// generateDebug generates String() for the Debug derive. Fields without a
// read or ref accessor are left out.
func (g *Generator) generateDebug() string {
	var code strings.Builder
	name := g.record.Name

	var format, args []string
	for _, fp := range g.plan.Fields {
		switch fp.Debug {
		case parser.BorrowImmutable:
			acc, _ := fp.Accessor(parser.BorrowImmutable)
			args = append(args, fmt.Sprintf("*r.%s()", acc.Name))
		case parser.Read:
			acc, _ := fp.Accessor(parser.Read)
			args = append(args, fmt.Sprintf("r.%s()", acc.Name))
		default:
			continue
		}
		format = append(format, fp.Field.Name+": %v")
	}

	code.WriteString(fmt.Sprintf("// String formats the readable fields of the %s.\n", name))
	code.WriteString(fmt.Sprintf("func (r *%s) String() string {\n", name))
	if len(args) == 0 {
		code.WriteString(fmt.Sprintf("\treturn %s\n", strconv.Quote(name+"{}")))
	} else {
		text := strconv.Quote(name + "{" + strings.Join(format, ", ") + "}")
		code.WriteString(fmt.Sprintf("\treturn fmt.Sprintf(%s, %s)\n", text, strings.Join(args, ", ")))
	}
	code.WriteString("}\n")

	return code.String()
}

// generateDefault generates the constructor for the Default derive. Every
// field goes through its writer, so a field without one fails to compile.
func (g *Generator) generateDefault() string {
	var code strings.Builder
	name := g.record.Name

	code.WriteString(fmt.Sprintf("// %s returns a %s with every field set to its zero value.\n", g.plan.DefaultName, name))
	code.WriteString(fmt.Sprintf("func %s() *%s {\n", g.plan.DefaultName, name))
	code.WriteString(fmt.Sprintf("\tr := new(%s)\n", name))
	for _, fp := range g.plan.Fields {
		setter := analyzer.AccessorName(fp.Field.Name, parser.Write)
		code.WriteString(fmt.Sprintf("\tr.%s(*new(%s))\n", setter, fp.Field.Type))
	}
	code.WriteString("\treturn r\n")
	code.WriteString("}\n")

	return code.String()
}

func writeDoc(code *strings.Builder, doc []string) {
	for _, line := range doc {
		code.WriteString(line)
		code.WriteString("\n")
	}
}

// Options control the file-level parts of the output.
type Options struct {
	// Header is written above the generated-code notice, e.g. a license.
	Header string

	// BuildTag is the build constraint of the generated file.
	// Defaults to DefaultBuildTag.
	BuildTag string
}

// GenerateFile renders a complete Go source file from a schema file:
// records are replaced by their generated code and every other
// declaration is copied, in declaration order. plans must be in the same
// order as file.Records.
func GenerateFile(file *parser.File, plans []*analyzer.Plan, opts Options) ([]byte, error) {
	if len(plans) != len(file.Records) {
		return nil, fmt.Errorf("%s: have %d plans for %d records", file.Name, len(plans), len(file.Records))
	}
	byRecord := make(map[*parser.Record]*analyzer.Plan, len(plans))
	for i, rec := range file.Records {
		if plans[i] == nil || plans[i].Record != rec {
			return nil, fmt.Errorf("%s: plan %d is not for record %s", file.Name, i, rec.Name)
		}
		byRecord[rec] = plans[i]
	}

	decls := file.Decls
	if decls == nil {
		for _, rec := range file.Records {
			decls = append(decls, parser.Decl{Record: rec})
		}
	}

	var body strings.Builder
	for _, d := range decls {
		if d.Record == nil {
			body.WriteString(d.Source)
			body.WriteString("\n\n")
			continue
		}
		plan, ok := byRecord[d.Record]
		if !ok {
			return nil, fmt.Errorf("%s: no plan for record %s", file.Name, d.Record.Name)
		}
		code, err := NewGenerator(plan).Generate()
		if err != nil {
			return nil, err
		}
		body.WriteString(code)
	}

	used, err := qualifiers(file.Name, body.String())
	if err != nil {
		return nil, err
	}

	var out strings.Builder

	if opts.Header != "" {
		for _, line := range strings.Split(strings.TrimRight(opts.Header, "\n"), "\n") {
			if !strings.HasPrefix(line, "//") {
				line = strings.TrimRight("// "+line, " ")
			}
			out.WriteString(line)
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}

	out.WriteString(fmt.Sprintf("// Code generated by structlayout from %s. DO NOT EDIT.\n\n", filepath.Base(file.Name)))

	tag := opts.BuildTag
	if tag == "" {
		tag = DefaultBuildTag
	}
	out.WriteString(fmt.Sprintf("//go:build %s\n\n", tag))
	out.WriteString(fmt.Sprintf("package %s\n\n", file.Package))

	if specs := importSpecs(file.Imports, used); len(specs) > 0 {
		out.WriteString("import (\n")
		for _, spec := range specs {
			out.WriteString("\t" + spec + "\n")
		}
		out.WriteString(")\n\n")
	}

	out.WriteString(body.String())

	// Format only: imports were chosen above, and nothing may be guessed
	// from the machine's module cache
	src, err := imports.Process(file.Name, []byte(out.String()), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated code for %s: %w", file.Name, err)
	}
	return src, nil
}

// qualifiers returns the package names the generated declarations refer to.
func qualifiers(filename, body string) (map[string]bool, error) {
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, filename, "package p\n\n"+body, goparser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("generated code for %s does not parse: %w", filename, err)
	}

	used := make(map[string]bool)
	ast.Inspect(f, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				used[id.Name] = true
			}
		}
		return true
	})
	return used, nil
}

// importSpecs lists the imports of the generated file: fmt and unsafe when
// used, then the schema's imports that are used, blank or dot imports.
func importSpecs(schema []parser.Import, used map[string]bool) []string {
	var specs []string
	for _, std := range []string{"fmt", "unsafe"} {
		if used[std] {
			specs = append(specs, strconv.Quote(std))
		}
	}
	for _, imp := range schema {
		if imp.Name == "" && (imp.Path == "fmt" || imp.Path == "unsafe") {
			continue
		}
		if imp.Name != "_" && imp.Name != "." && !used[importName(imp)] {
			continue
		}
		if imp.Name != "" {
			specs = append(specs, imp.Name+" "+strconv.Quote(imp.Path))
		} else {
			specs = append(specs, strconv.Quote(imp.Path))
		}
	}
	return specs
}

// importName is the name a file uses for an import. Without an explicit
// name it is assumed from the path: the last element, minus a major
// version element and a "go-" prefix, cut at the first character that
// cannot appear in an identifier.
func importName(imp parser.Import) string {
	if imp.Name != "" {
		return imp.Name
	}
	base := path.Base(imp.Path)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := path.Dir(imp.Path); dir != "." {
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}); i >= 0 {
		base = base[:i]
	}
	return base
}
