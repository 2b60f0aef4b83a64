package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// File is a parsed schema file.
type File struct {
	Name    string
	Package string
	Imports []Import
	Records []*Record
	Types   []TypeDecl // Declarations without @layout, kept for size hints

	// Decls holds every top-level declaration except imports, in source
	// order. Declarations without @layout are carried over verbatim.
	Decls []Decl
}

// Decl is a top-level declaration of a schema file: either a record or
// the source text of a declaration the generator copies unchanged.
type Decl struct {
	Record *Record
	Source string   // Including the doc comment; empty for records
	Names  []string // Package-level names a copied declaration declares
}

// TypeDecl is a non-generic type declaration the generator does not
// rewrite, such as `type PageID uint64`.
type TypeDecl struct {
	Name       string
	Underlying string // Type expression, verbatim source text
}

// Import is an import declaration of the schema file, carried into the
// generated file so field types keep resolving.
type Import struct {
	Name string
	Path string
}

// Record represents a struct with an @layout annotation
type Record struct {
	Name    string
	Doc     []string // Documentation comment lines, verbatim
	Derives []DerivedBehavior
	Layout  RecordLayout
	Fields  []Field
	Pos     token.Position
}

// Field represents a struct field with a layout attribute
type Field struct {
	Name   string
	Type   string   // Type expression, verbatim source text
	Doc    []string // Documentation comment lines, verbatim
	Layout FieldLayout
	Pos    token.Position
}

// Exported reports whether the record is visible outside its package.
func (r *Record) Exported() bool {
	return token.IsExported(r.Name)
}

// Exported reports whether the field is visible outside its package.
func (f *Field) Exported() bool {
	return token.IsExported(f.Name)
}

// HasDerive reports whether d was requested for the record.
func (r *Record) HasDerive(d DerivedBehavior) bool {
	for _, have := range r.Derives {
		if have == d {
			return true
		}
	}
	return false
}

// ParseFile parses a Go schema file and extracts types with @layout annotations
func ParseFile(filename string) (*File, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSource(filename, src)
}

// ParseSource is ParseFile for source already in memory.
func ParseSource(filename string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	x := &extractor{fset: fset, src: src}
	if err := x.decls(file); err != nil {
		return nil, err
	}

	return &File{
		Name:    filename,
		Package: file.Name.Name,
		Imports: extractImports(file),
		Records: x.records,
		Types:   x.types,
		Decls:   x.out,
	}, nil
}

func extractImports(file *ast.File) []Import {
	var imports []Import
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		imports = append(imports, imp)
	}
	return imports
}

type extractor struct {
	fset    *token.FileSet
	src     []byte
	records []*Record
	types   []TypeDecl
	out     []Decl
}

type attrLine struct {
	text string
	pos  token.Position
}

func (x *extractor) decls(file *ast.File) error {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		switch {
		case ok && genDecl.Tok == token.IMPORT:
			continue
		case !ok:
			x.copyDecl(decl, decl.(*ast.FuncDecl).Doc, nil)
			continue
		case genDecl.Tok != token.TYPE:
			x.copyDecl(genDecl, genDecl.Doc, lineComment(genDecl))
			continue
		}
		if err := x.typeDecl(genDecl); err != nil {
			return err
		}
	}
	return nil
}

// typeDecl splits a type declaration into records and copied specs. A
// group without any record is copied as a whole.
func (x *extractor) typeDecl(genDecl *ast.GenDecl) error {
	type spec struct {
		typeSpec *ast.TypeSpec
		docs     []string
		attrs    []attrLine
	}
	var specs []spec
	var hasRecord bool
	for _, s := range genDecl.Specs {
		typeSpec := s.(*ast.TypeSpec)

		doc := typeSpec.Doc
		if doc == nil && !genDecl.Lparen.IsValid() {
			doc = genDecl.Doc
		}
		docs, attrs := x.splitComments(doc)
		if hasLayoutAttribute(attrs) {
			hasRecord = true
		} else if typeSpec.TypeParams == nil {
			x.types = append(x.types, TypeDecl{Name: typeSpec.Name.Name, Underlying: x.text(typeSpec.Type)})
		}
		specs = append(specs, spec{typeSpec, docs, attrs})
	}

	if !hasRecord {
		x.copyDecl(genDecl, genDecl.Doc, lineComment(genDecl))
		return nil
	}

	for _, s := range specs {
		if !hasLayoutAttribute(s.attrs) {
			x.copyDecl(s.typeSpec, s.typeSpec.Doc, s.typeSpec.Comment)
			continue
		}
		record, err := x.record(s.typeSpec, s.docs, s.attrs)
		if err != nil {
			return err
		}
		x.records = append(x.records, record)
		x.out = append(x.out, Decl{Record: record})
	}
	return nil
}

// copyDecl keeps the source of a declaration the generator does not
// rewrite. A spec taken out of a type group gets its own type keyword.
func (x *extractor) copyDecl(node ast.Node, doc, comment *ast.CommentGroup) {
	var b strings.Builder
	if doc != nil {
		for _, c := range doc.List {
			b.WriteString(c.Text)
			b.WriteString("\n")
		}
	}
	if _, ok := node.(*ast.TypeSpec); ok {
		b.WriteString("type ")
	}
	b.WriteString(x.text(node))
	if comment != nil {
		for _, c := range comment.List {
			b.WriteString(" ")
			b.WriteString(c.Text)
		}
	}
	x.out = append(x.out, Decl{Source: b.String(), Names: declaredNames(node)})
}

func declaredNames(node ast.Node) []string {
	var names []string
	add := func(id *ast.Ident) {
		if id.Name != "_" {
			names = append(names, id.Name)
		}
	}
	switch n := node.(type) {
	case *ast.FuncDecl:
		if n.Recv == nil && n.Name.Name != "init" {
			add(n.Name)
		}
	case *ast.TypeSpec:
		add(n.Name)
	case *ast.GenDecl:
		for _, spec := range n.Specs {
			switch sp := spec.(type) {
			case *ast.TypeSpec:
				add(sp.Name)
			case *ast.ValueSpec:
				for _, id := range sp.Names {
					add(id)
				}
			}
		}
	}
	return names
}

// lineComment returns the comment trailing an ungrouped declaration.
func lineComment(genDecl *ast.GenDecl) *ast.CommentGroup {
	if genDecl.Lparen.IsValid() || len(genDecl.Specs) != 1 {
		return nil
	}
	switch spec := genDecl.Specs[0].(type) {
	case *ast.ValueSpec:
		return spec.Comment
	case *ast.TypeSpec:
		return spec.Comment
	}
	return nil
}

func hasLayoutAttribute(attrs []attrLine) bool {
	for _, a := range attrs {
		attr, err := ParseAttribute(a.text)
		if err == nil && attr.Name == "layout" {
			return true
		}
		if err != nil && strings.HasPrefix(a.text, "@layout") {
			return true // Let record() report the syntax error
		}
	}
	return false
}

// splitComments separates attribute lines from documentation lines.
// Documentation is kept verbatim, minus trailing blank comment lines.
func (x *extractor) splitComments(doc *ast.CommentGroup) ([]string, []attrLine) {
	if doc == nil {
		return nil, nil
	}

	var docs []string
	var attrs []attrLine
	for _, comment := range doc.List {
		cleaned := CleanComment(comment.Text)
		if IsAttribute(cleaned) {
			attrs = append(attrs, attrLine{text: cleaned, pos: x.fset.Position(comment.Slash)})
			continue
		}
		docs = append(docs, comment.Text)
	}

	for len(docs) > 0 && CleanComment(docs[len(docs)-1]) == "" {
		docs = docs[:len(docs)-1]
	}
	return docs, attrs
}

func (x *extractor) record(typeSpec *ast.TypeSpec, docs []string, attrs []attrLine) (*Record, error) {
	name := typeSpec.Name.Name
	pos := x.fset.Position(typeSpec.Name.Pos())

	record := &Record{Name: name, Doc: docs, Pos: pos}

	// Struct-level layout first: a malformed @layout fails before
	// anything else about the declaration is examined.
	var haveLayout bool
	for _, a := range attrs {
		attr, err := ParseAttribute(a.text)
		if err != nil {
			return nil, err.(*Error).at(a.pos, name, "")
		}
		kind, ok := attr.kind()
		switch {
		case !ok:
			return nil, errorf(UnsupportedAttribute, "unsupported attribute `@%s`", attr.Name).at(a.pos, name, "")
		case kind == fieldAttribute:
			return nil, errorf(UnsupportedAttribute, "`@field` is only allowed on struct fields").at(a.pos, name, "")
		case kind == layoutAttribute:
			if haveLayout {
				return nil, errorf(MalformedAttribute, "duplicate `@layout` attribute").at(a.pos, name, "")
			}
			haveLayout = true
			layout, err := ParseLayout(attr.Args)
			if err != nil {
				return nil, err.(*Error).at(a.pos, name, "")
			}
			record.Layout = layout
		case kind == deriveAttribute:
			if !attr.HasArgs {
				return nil, errorf(MalformedAttribute, "invalid derive syntax, expecting `@derive(..)`").at(a.pos, name, "")
			}
			derives, err := ParseDerive(attr.Args)
			if err != nil {
				return nil, err.(*Error).at(a.pos, name, "")
			}
			for _, d := range derives {
				if !record.HasDerive(d) {
					record.Derives = append(record.Derives, d)
				}
			}
		}
	}

	structType, err := x.target(typeSpec)
	if err != nil {
		return nil, err.at(pos, name, "")
	}

	for _, field := range structType.Fields.List {
		f, err := x.field(name, field)
		if err != nil {
			return nil, err
		}
		record.Fields = append(record.Fields, f)
	}

	return record, nil
}

// target rejects every declaration that is not a plain struct.
func (x *extractor) target(typeSpec *ast.TypeSpec) (*ast.StructType, *Error) {
	if typeSpec.Assign.IsValid() {
		return nil, errorf(UnsupportedTarget, "type alias not supported, explicit layout is only allowed on struct definitions")
	}
	if typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0 {
		return nil, errorf(UnsupportedTarget, "generic type parameters not supported")
	}

	switch t := typeSpec.Type.(type) {
	case *ast.StructType:
		for _, field := range t.Fields.List {
			if len(field.Names) == 0 {
				return nil, errorf(UnsupportedTarget, "embedded field `%s` not supported, explicit layout requires named fields", x.text(field.Type)).at(x.fset.Position(field.Pos()), "", "")
			}
			if len(field.Names) > 1 {
				names := make([]string, len(field.Names))
				for i, n := range field.Names {
					names[i] = n.Name
				}
				return nil, errorf(UnsupportedTarget, "field list `%s` declares several fields, each field needs its own layout", strings.Join(names, ", ")).at(x.fset.Position(field.Pos()), "", "")
			}
		}
		return t, nil
	case *ast.InterfaceType:
		return nil, errorf(UnsupportedTarget, "interface type not supported, explicit layout is only allowed on struct definitions")
	case *ast.Ident, *ast.SelectorExpr:
		return nil, errorf(UnsupportedTarget, "named type `%s` not supported, explicit layout is only allowed on struct definitions", x.text(t))
	case *ast.ArrayType:
		return nil, errorf(UnsupportedTarget, "array or slice type not supported, explicit layout is only allowed on struct definitions")
	case *ast.MapType:
		return nil, errorf(UnsupportedTarget, "map type not supported, explicit layout is only allowed on struct definitions")
	case *ast.FuncType:
		return nil, errorf(UnsupportedTarget, "function type not supported, explicit layout is only allowed on struct definitions")
	case *ast.ChanType:
		return nil, errorf(UnsupportedTarget, "channel type not supported, explicit layout is only allowed on struct definitions")
	case *ast.StarExpr:
		return nil, errorf(UnsupportedTarget, "pointer type not supported, explicit layout is only allowed on struct definitions")
	default:
		return nil, errorf(UnsupportedTarget, "type `%s` not supported, explicit layout is only allowed on struct definitions", x.text(t))
	}
}

func (x *extractor) field(record string, field *ast.Field) (Field, error) {
	name := field.Names[0].Name
	pos := x.fset.Position(field.Names[0].Pos())

	docs, attrs := x.splitComments(field.Doc)
	// Attributes may also trail the field on its line
	_, trailing := x.splitComments(field.Comment)
	attrs = append(attrs, trailing...)

	var layout *FieldLayout
	for _, a := range attrs {
		attr, err := ParseAttribute(a.text)
		if err != nil {
			return Field{}, err.(*Error).at(a.pos, record, name)
		}
		kind, ok := attr.kind()
		switch {
		case !ok:
			return Field{}, errorf(UnsupportedAttribute, "unsupported attribute `@%s`", attr.Name).at(a.pos, record, name)
		case kind != fieldAttribute:
			return Field{}, errorf(UnsupportedAttribute, "`@%s` is only allowed on the struct", attr.Name).at(a.pos, record, name)
		case layout != nil:
			return Field{}, errorf(DuplicateFieldLayout, "found more than one field layout, every field must have exactly one").at(a.pos, record, name)
		case !attr.HasArgs:
			return Field{}, errorf(MissingArgument, "invalid field attribute syntax, expecting `@field(offset = <uint>, ..)`").at(a.pos, record, name)
		}
		l, err := ParseFieldLayout(attr.Args)
		if err != nil {
			return Field{}, err.(*Error).at(a.pos, record, name)
		}
		layout = &l
	}

	if field.Tag != nil {
		tagPos := x.fset.Position(field.Tag.Pos())
		raw, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			return Field{}, errorf(MalformedAttribute, "invalid struct tag: %v", err).at(tagPos, record, name)
		}
		if value, ok := reflect.StructTag(raw).Lookup("layout"); ok {
			if layout != nil {
				return Field{}, errorf(DuplicateFieldLayout, "found both `@field` and `layout` tag, every field must have exactly one").at(tagPos, record, name)
			}
			l, err := ParseTag(value)
			if err != nil {
				return Field{}, err.(*Error).at(tagPos, record, name)
			}
			layout = &l
		}
	}

	if layout == nil {
		return Field{}, errorf(MissingFieldLayout, "every field must have a `@field(..)` attribute or `layout:\"..\"` tag").at(pos, record, name)
	}

	return Field{
		Name:   name,
		Type:   x.text(field.Type),
		Doc:    docs,
		Layout: *layout,
		Pos:    pos,
	}, nil
}

// text returns the verbatim source of a node.
func (x *extractor) text(node ast.Node) string {
	file := x.fset.File(node.Pos())
	if file == nil {
		return ""
	}
	start, end := file.Offset(node.Pos()), file.Offset(node.End())
	if start < 0 || end > len(x.src) || start > end {
		return ""
	}
	return string(x.src[start:end])
}
