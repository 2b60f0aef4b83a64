package analyzer

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alexhholmes/structlayout/internal/parser"
)

// ErrNameCollision reports two generated identifiers with the same name.
var ErrNameCollision = errors.New("generated name collision")

// BufferField is the name of the backing byte array of every record.
const BufferField = "buf"

// DefaultBound is the capability bound used when a record has no check:
// every predeclared type that is fixed size, pointer free and valid for any
// bit pattern except bool, which Go also stores as a plain byte.
const DefaultBound = "~bool | ~int | ~int8 | ~int16 | ~int32 | ~int64 | " +
	"~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr | " +
	"~float32 | ~float64 | ~complex64 | ~complex128"

// Obligation is a condition the host compiler proves for one accessor.
type Obligation int

const (
	Bounds      Obligation = iota + 1 // offset + Sizeof(T) <= size
	FieldAlign                        // offset % Alignof(T) == 0
	RecordAlign                       // Alignof(record) % Alignof(T) == 0
	Capability                        // T satisfies the record's bound
)

func (o Obligation) String() string {
	switch o {
	case Bounds:
		return "bounds"
	case FieldAlign:
		return "field alignment"
	case RecordAlign:
		return "record alignment"
	case Capability:
		return "capability"
	default:
		return "unknown"
	}
}

var (
	copyObligations   = []Obligation{Bounds, Capability}
	borrowObligations = []Obligation{Bounds, FieldAlign, RecordAlign, Capability}
)

// Accessor is one generated method for a field.
type Accessor struct {
	Kind        parser.AccessorKind
	Name        string
	Obligations []Obligation
}

// FieldPlan is everything generated for a single field.
type FieldPlan struct {
	Field     parser.Field
	Accessors []Accessor

	// Debug is the accessor String uses to print the field, zero when the
	// field has neither a read nor a ref accessor and is left out.
	Debug parser.AccessorKind
}

// Accessor returns the planned accessor of kind k.
func (f *FieldPlan) Accessor(k parser.AccessorKind) (Accessor, bool) {
	for _, a := range f.Accessors {
		if a.Kind == k {
			return a, true
		}
	}
	return Accessor{}, false
}

// Finding is a non-fatal note about a record: a deferred proof the host
// build will reject, or an eager warning about one.
type Finding struct {
	Pos        token.Position
	Record     string
	Field      string
	Obligation Obligation
	Msg        string
}

func (f Finding) String() string {
	var b strings.Builder
	if f.Pos.IsValid() {
		b.WriteString(f.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(f.Record)
	if f.Field != "" {
		b.WriteString(".")
		b.WriteString(f.Field)
	}
	b.WriteString(": ")
	b.WriteString(f.Msg)
	return b.String()
}

// Plan is the validated generation plan of one record.
type Plan struct {
	Record *parser.Record

	// Bound is the constraint of the capability bound type.
	Bound     string
	BoundType string

	// DefaultName is the constructor emitted for DefaultConstruct.
	DefaultName string

	Fields []FieldPlan

	// Deferred lists derived behaviors that were emitted even though the
	// host build will reject them.
	Deferred []Finding

	// Warnings lists obligations that are known to fail without asking the
	// host compiler. Generation goes ahead regardless.
	Warnings []Finding
}

// Analyze validates a parsed record and plans its accessors and derived
// behaviors. Only structural problems are errors: bounds and alignment are
// left to the host compiler and at most produce warnings.
func Analyze(rec *parser.Record, registry *TypeRegistry) (*Plan, error) {
	if rec == nil {
		return nil, fmt.Errorf("record is nil")
	}
	if registry == nil {
		registry = NewTypeRegistry()
	}

	p := &Plan{
		Record:      rec,
		Bound:       rec.Layout.Check,
		BoundType:   BoundTypeName(rec.Name),
		DefaultName: DefaultName(rec.Name),
	}
	if p.Bound == "" {
		p.Bound = DefaultBound
	}

	names := newNameSet(rec)
	for _, field := range rec.Fields {
		fp := FieldPlan{Field: field}

		for _, kind := range field.Layout.Kinds.Kinds() {
			acc := Accessor{Kind: kind, Name: AccessorName(field.Name, kind)}
			if err := names.claim(acc.Name, field); err != nil {
				return nil, err
			}
			switch kind {
			case parser.Read, parser.Write:
				acc.Obligations = copyObligations
			default:
				acc.Obligations = borrowObligations
			}
			fp.Accessors = append(fp.Accessors, acc)
		}

		switch {
		case field.Layout.Kinds.Has(parser.BorrowImmutable):
			fp.Debug = parser.BorrowImmutable
		case field.Layout.Kinds.Has(parser.Read):
			fp.Debug = parser.Read
		}

		p.Warnings = append(p.Warnings, eagerWarnings(p, &fp, registry)...)
		p.Fields = append(p.Fields, fp)
	}

	if rec.HasDerive(parser.DefaultConstruct) {
		for _, fp := range p.Fields {
			if _, ok := fp.Accessor(parser.Write); ok {
				continue
			}
			p.Deferred = append(p.Deferred, Finding{
				Pos:    fp.Field.Pos,
				Record: rec.Name,
				Field:  fp.Field.Name,
				Msg:    fmt.Sprintf("Default calls %s, but the field has no set accessor", AccessorName(fp.Field.Name, parser.Write)),
			})
		}
	}

	log := Logger()
	for _, d := range p.Deferred {
		log.Warn("deferred derive will fail to compile", zap.String("record", d.Record), zap.String("field", d.Field), zap.String("reason", d.Msg))
	}
	for _, w := range p.Warnings {
		log.Debug("layout obligation fails", zap.String("record", w.Record), zap.String("field", w.Field), zap.Stringer("obligation", w.Obligation))
	}
	log.Debug("planned record", zap.String("record", rec.Name), zap.Int("fields", len(p.Fields)), zap.Uint64("size", rec.Layout.Size))

	return p, nil
}

// AnalyzeFile analyzes every record of a schema file against a registry
// of the file's records and type declarations. Besides the checks of
// Analyze it rejects package-level names that would be declared twice,
// such as the bound types of records foo and Foo or a constructor NewBar
// next to a declared NewBar.
func AnalyzeFile(file *parser.File) ([]*Plan, error) {
	registry := NewTypeRegistry()
	for _, t := range file.Types {
		registry.RegisterAlias(t.Name, t.Underlying)
	}

	owners := make(map[string]string)
	for _, d := range file.Decls {
		for _, name := range d.Names {
			owners[name] = "declaration " + name
		}
	}
	for _, rec := range file.Records {
		registry.Register(rec.Name, rec.Layout.Size, rec.Layout.Align)
		owners[rec.Name] = "record " + rec.Name
	}

	plans := make([]*Plan, 0, len(file.Records))
	for _, rec := range file.Records {
		plan, err := Analyze(rec, registry)
		if err != nil {
			return nil, err
		}

		generated := []string{plan.BoundType}
		if rec.HasDerive(parser.DefaultConstruct) {
			generated = append(generated, plan.DefaultName)
		}
		for _, name := range generated {
			if prev, ok := owners[name]; ok {
				return nil, fmt.Errorf("%s: %s: %w: `%s` clashes with %s", rec.Pos, rec.Name, ErrNameCollision, name, prev)
			}
			owners[name] = "a name generated for " + rec.Name
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// eagerWarnings reports obligations of fp that fail for types whose size is
// known without type checking.
func eagerWarnings(p *Plan, fp *FieldPlan, registry *TypeRegistry) []Finding {
	rec := p.Record
	field := fp.Field
	warn := func(o Obligation, format string, args ...any) Finding {
		return Finding{Pos: field.Pos, Record: rec.Name, Field: field.Name, Obligation: o, Msg: fmt.Sprintf(format, args...)}
	}

	var warnings []Finding
	resolved := registry.ResolveType(field.Type)
	if _, record := registry.Lookup(resolved); rec.Layout.Check == "" && (record || !plainType(resolved)) {
		warnings = append(warnings, warn(Capability, "type %s does not satisfy the default bound", field.Type))
	}

	info, err := registry.SizeOf(field.Type)
	if err != nil {
		return warnings // Left to the host compiler
	}

	if end := field.Layout.Offset + info.Size; end > rec.Layout.Size || end < field.Layout.Offset {
		warnings = append(warnings, warn(Bounds, "field [%d, %d) exceeds record size %d", field.Layout.Offset, end, rec.Layout.Size))
	}
	if !field.Layout.Kinds.Has(parser.BorrowImmutable) && !field.Layout.Kinds.Has(parser.BorrowMutable) {
		return warnings
	}
	if info.Align > 0 && field.Layout.Offset%info.Align != 0 {
		warnings = append(warnings, warn(FieldAlign, "offset %d is not a multiple of the alignment %d of %s", field.Layout.Offset, info.Align, field.Type))
	}
	if info.Align > 0 && rec.Layout.Align%info.Align != 0 {
		warnings = append(warnings, warn(RecordAlign, "record alignment %d is not a multiple of the alignment %d of %s", rec.Layout.Align, info.Align, field.Type))
	}
	return warnings
}

// plainType reports whether a resolved type expression can satisfy the
// default bound. Only the shape of the expression is known, so anything
// that is not obviously composite passes.
func plainType(goType string) bool {
	switch goType {
	case "string", "any", "error":
		return false
	}
	for _, prefix := range []string{"*", "[", "map[", "chan ", "chan<-", "<-chan", "func(", "func (", "interface{", "interface {", "struct{", "struct {"} {
		if strings.HasPrefix(goType, prefix) {
			return false
		}
	}
	return true
}

// AccessorName returns the method name generated for a field accessor.
// Unexported fields get unexported accessors.
func AccessorName(field string, kind parser.AccessorKind) string {
	switch kind {
	case parser.Read:
		return field
	case parser.Write:
		if token.IsExported(field) {
			return "Set" + field
		}
		return "set" + upperFirst(field)
	case parser.BorrowImmutable:
		return field + "Ref"
	case parser.BorrowMutable:
		return field + "Mut"
	default:
		return field
	}
}

// DefaultName returns the constructor name generated for a record.
func DefaultName(record string) string {
	if token.IsExported(record) {
		return "New" + record
	}
	return "new" + upperFirst(record)
}

// BoundTypeName returns the name of a record's capability bound type.
func BoundTypeName(record string) string {
	return "layoutBound" + upperFirst(record)
}

// DerivedMethod returns the method a derived behavior generates, or "" if
// it generates a function instead.
func DerivedMethod(d parser.DerivedBehavior) string {
	switch d {
	case parser.BitwiseCopy:
		return "CopyTo"
	case parser.Clone:
		return "Clone"
	case parser.DebugFormat:
		return "String"
	default:
		return ""
	}
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// nameSet tracks the selectors of a generated record type.
type nameSet struct {
	record string
	owners map[string]string
}

func newNameSet(rec *parser.Record) *nameSet {
	s := &nameSet{record: rec.Name, owners: map[string]string{
		BufferField: "the backing buffer",
	}}
	for _, d := range rec.Derives {
		if m := DerivedMethod(d); m != "" {
			s.owners[m] = fmt.Sprintf("the %s derive", d)
		}
	}
	return s
}

func (s *nameSet) claim(name string, field parser.Field) error {
	if field.Name == "_" {
		return fmt.Errorf("%s: %s: %w: blank field cannot have accessors", field.Pos, s.record, ErrNameCollision)
	}
	owner := fmt.Sprintf("field %s", field.Name)
	if prev, ok := s.owners[name]; ok {
		return fmt.Errorf("%s: %s.%s: %w: accessor `%s` clashes with %s", field.Pos, s.record, field.Name, ErrNameCollision, name, prev)
	}
	s.owners[name] = owner
	return nil
}
