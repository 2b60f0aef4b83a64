package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alexhholmes/structlayout/internal/parser"
)

func record(name string, size, align uint64, fields ...parser.Field) *parser.Record {
	return &parser.Record{
		Name:   name,
		Layout: parser.RecordLayout{Size: size, Align: align},
		Fields: fields,
	}
}

func field(name, goType string, offset uint64, kinds ...parser.AccessorKind) parser.Field {
	var set parser.AccessorSet
	for _, k := range kinds {
		set |= parser.AccessorSet(k)
	}
	if set == 0 {
		set = parser.AllAccessors
	}
	return parser.Field{Name: name, Type: goType, Layout: parser.FieldLayout{Offset: offset, Kinds: set}}
}

func TestAnalyze_Accessors(t *testing.T) {
	// type Foo struct {
	//     Field int32  `layout:"offset = 4"`
	//     flags uint16 `layout:"offset = 2, get, mut"`
	// }
	rec := record("Foo", 16, 4,
		field("Field", "int32", 4),
		field("flags", "uint16", 2, parser.Read, parser.BorrowMutable),
	)

	plan, err := Analyze(rec, nil)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if len(plan.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(plan.Fields))
	}

	want := []Accessor{
		{Kind: parser.Read, Name: "Field", Obligations: copyObligations},
		{Kind: parser.Write, Name: "SetField", Obligations: copyObligations},
		{Kind: parser.BorrowImmutable, Name: "FieldRef", Obligations: borrowObligations},
		{Kind: parser.BorrowMutable, Name: "FieldMut", Obligations: borrowObligations},
	}
	if diff := cmp.Diff(want, plan.Fields[0].Accessors); diff != "" {
		t.Errorf("Field accessors mismatch (-want +got):\n%s", diff)
	}

	want = []Accessor{
		{Kind: parser.Read, Name: "flags", Obligations: copyObligations},
		{Kind: parser.BorrowMutable, Name: "flagsMut", Obligations: borrowObligations},
	}
	if diff := cmp.Diff(want, plan.Fields[1].Accessors); diff != "" {
		t.Errorf("flags accessors mismatch (-want +got):\n%s", diff)
	}

	if plan.Bound != DefaultBound {
		t.Errorf("Bound = %q, want default", plan.Bound)
	}
	if plan.BoundType != "layoutBoundFoo" {
		t.Errorf("BoundType = %q, want layoutBoundFoo", plan.BoundType)
	}
	if len(plan.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", plan.Warnings)
	}
}

func TestAnalyze_DebugSource(t *testing.T) {
	rec := record("Foo", 16, 4,
		field("All", "int32", 0),
		field("Read", "int32", 4, parser.Read, parser.Write),
		field("Borrow", "int32", 8, parser.BorrowImmutable),
		field("WriteOnly", "int32", 12, parser.Write, parser.BorrowMutable),
	)
	rec.Derives = []parser.DerivedBehavior{parser.DebugFormat}

	plan, err := Analyze(rec, nil)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	tests := []struct {
		field string
		want  parser.AccessorKind
	}{
		{"All", parser.BorrowImmutable},
		{"Read", parser.Read},
		{"Borrow", parser.BorrowImmutable},
		{"WriteOnly", 0}, // Left out of the Debug output
	}
	for i, tt := range tests {
		if got := plan.Fields[i].Debug; got != tt.want {
			t.Errorf("%s: Debug source = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestAnalyze_DefaultWithoutWrite(t *testing.T) {
	rec := record("Foo", 8, 4,
		field("A", "int32", 0, parser.Read, parser.Write),
		field("B", "int32", 4, parser.Read),
	)
	rec.Derives = []parser.DerivedBehavior{parser.DefaultConstruct}

	plan, err := Analyze(rec, nil)
	if err != nil {
		t.Fatalf("Analyze() must not fail on deferred proofs: %v", err)
	}

	if len(plan.Deferred) != 1 {
		t.Fatalf("Expected 1 deferred finding, got %d: %v", len(plan.Deferred), plan.Deferred)
	}
	if d := plan.Deferred[0]; d.Field != "B" || !strings.Contains(d.Msg, "SetB") {
		t.Errorf("Deferred = %+v, want field B calling SetB", d)
	}
	if plan.DefaultName != "NewFoo" {
		t.Errorf("DefaultName = %q, want NewFoo", plan.DefaultName)
	}
}

func TestAnalyze_Warnings(t *testing.T) {
	tests := []struct {
		name  string
		rec   *parser.Record
		check string
		want  []Obligation
	}{
		{
			name: "in bounds",
			rec:  record("Foo", 16, 4, field("X", "int32", 4)),
		},
		{
			name: "past the end",
			rec:  record("Foo", 8, 1, field("X", "int32", 5, parser.Read, parser.Write)),
			want: []Obligation{Bounds},
		},
		{
			name: "unaligned copy is fine",
			rec:  record("Foo", 16, 1, field("X", "int64", 3, parser.Read, parser.Write)),
		},
		{
			name: "unaligned borrow",
			rec:  record("Foo", 16, 4, field("X", "int32", 3, parser.BorrowImmutable)),
			want: []Obligation{FieldAlign},
		},
		{
			name: "record alignment too small",
			rec:  record("Foo", 16, 1, field("X", "int32", 4, parser.BorrowMutable)),
			want: []Obligation{RecordAlign},
		},
		{
			name: "pointer under the default bound",
			rec:  record("Foo", 16, 8, field("X", "*int", 0)),
			want: []Obligation{Capability},
		},
		{
			name:  "pointer under an explicit bound",
			rec:   record("Foo", 16, 8, field("X", "*int", 0)),
			check: "any",
		},
		{
			name: "unknown type is left to the compiler",
			rec:  record("Foo", 4, 4, field("X", "time.Duration", 0)),
		},
		{
			name:  "zero size record",
			rec:   record("Foo", 0, 1, field("X", "[0]uint8", 0)),
			check: "any",
		},
		{
			name: "array under the default bound",
			rec:  record("Foo", 4, 1, field("X", "[4]uint8", 0, parser.Read)),
			want: []Obligation{Capability},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rec.Layout.Check = tt.check
			plan, err := Analyze(tt.rec, nil)
			if err != nil {
				t.Fatalf("Analyze() error: %v", err)
			}
			var got []Obligation
			for _, w := range plan.Warnings {
				got = append(got, w.Obligation)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s\n%v", diff, plan.Warnings)
			}
		})
	}
}

func TestAnalyze_RegistryWarnings(t *testing.T) {
	reg := NewTypeRegistry()
	reg.Register("Header", 8, 8)
	reg.RegisterAlias("PageID", "uint64")

	rec := record("Page", 16, 8,
		field("ID", "PageID", 12, parser.Read, parser.Write),
		field("Head", "Header", 0, parser.BorrowImmutable),
	)

	plan, err := Analyze(rec, reg)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	var got []string
	for _, w := range plan.Warnings {
		got = append(got, w.Field+": "+w.Obligation.String())
	}
	want := []string{
		"ID: bounds",
		"Head: capability", // Records are not in the default bound
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_NameCollisions(t *testing.T) {
	tests := []struct {
		name    string
		fields  []parser.Field
		derives []parser.DerivedBehavior
		errMsg  string
	}{
		{
			name: "backing buffer",
			fields: []parser.Field{
				field("buf", "uint8", 0, parser.Read),
			},
			errMsg: "clashes with the backing buffer",
		},
		{
			name: "accessor against accessor",
			fields: []parser.Field{
				field("X", "uint8", 0, parser.BorrowImmutable),
				field("XRef", "uint8", 1, parser.Read),
			},
			errMsg: "accessor `XRef` clashes with field X",
		},
		{
			name: "derived method",
			fields: []parser.Field{
				field("String", "uint8", 0, parser.Read),
			},
			derives: []parser.DerivedBehavior{parser.DebugFormat},
			errMsg:  "clashes with the Debug derive",
		},
		{
			name: "blank field",
			fields: []parser.Field{
				field("_", "uint8", 0),
			},
			errMsg: "blank field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record("Foo", 8, 1, tt.fields...)
			rec.Derives = tt.derives

			_, err := Analyze(rec, nil)
			if !errors.Is(err, ErrNameCollision) {
				t.Fatalf("Analyze() error = %v, want ErrNameCollision", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestAnalyze_StringWithoutDebug(t *testing.T) {
	// Without the Debug derive a field may own the String name.
	rec := record("Foo", 8, 1, field("String", "uint8", 0, parser.Read))
	if _, err := Analyze(rec, nil); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
}

func TestAccessorNames(t *testing.T) {
	tests := []struct {
		field string
		kind  parser.AccessorKind
		want  string
	}{
		{"Count", parser.Read, "Count"},
		{"Count", parser.Write, "SetCount"},
		{"Count", parser.BorrowImmutable, "CountRef"},
		{"Count", parser.BorrowMutable, "CountMut"},
		{"count", parser.Read, "count"},
		{"count", parser.Write, "setCount"},
		{"count", parser.BorrowImmutable, "countRef"},
		{"_count", parser.Write, "set_count"},
	}

	for _, tt := range tests {
		if got := AccessorName(tt.field, tt.kind); got != tt.want {
			t.Errorf("AccessorName(%q, %v) = %q, want %q", tt.field, tt.kind, got, tt.want)
		}
	}

	if got := DefaultName("Foo"); got != "NewFoo" {
		t.Errorf("DefaultName(Foo) = %q", got)
	}
	if got := DefaultName("foo"); got != "newFoo" {
		t.Errorf("DefaultName(foo) = %q", got)
	}
	if got := BoundTypeName("foo"); got != "layoutBoundFoo" {
		t.Errorf("BoundTypeName(foo) = %q", got)
	}
}

func TestAnalyze_NilRecord(t *testing.T) {
	if _, err := Analyze(nil, nil); err == nil {
		t.Error("expected error for nil record")
	}
}

func TestAnalyzeFile(t *testing.T) {
	file, err := parser.ParseSource("page.go", []byte(`package test

type PageID uint64

// @layout(size = 8, align = 4)
type Header struct {
	// @field(offset = 0)
	N uint32
}

// @layout(size = 16, align = 8)
// @derive(Default)
type Page struct {
	// @field(offset = 12, get, set)
	ID PageID

	// @field(offset = 0, ref)
	Head Header
}
`))
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}

	plans, err := AnalyzeFile(file)
	if err != nil {
		t.Fatalf("AnalyzeFile() error: %v", err)
	}
	if len(plans) != 2 || plans[0].Record.Name != "Header" || plans[1].Record.Name != "Page" {
		t.Fatalf("plans out of declaration order: %v", plans)
	}

	// Sizes come from the file's own declarations
	var got []string
	for _, w := range plans[1].Warnings {
		got = append(got, w.Field+": "+w.Obligation.String())
	}
	want := []string{"ID: bounds", "Head: capability"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeFile_NameCollisions(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		errMsg string
	}{
		{
			name: "bound types of foo and Foo",
			schema: `
// @layout(size = 4, align = 4)
type foo struct {
	// @field(offset = 0)
	F int32
}

// @layout(size = 4, align = 4)
type Foo struct {
	// @field(offset = 0)
	F int32
}`,
			errMsg: "`layoutBoundFoo` clashes with a name generated for foo",
		},
		{
			name: "constructor against a record",
			schema: `
// @layout(size = 4, align = 4)
// @derive(Default)
type Bar struct {
	// @field(offset = 0)
	F int32
}

// @layout(size = 4, align = 4)
type NewBar struct {
	// @field(offset = 0)
	F int32
}`,
			errMsg: "`NewBar` clashes with record NewBar",
		},
		{
			name: "constructor against a declaration",
			schema: `
func NewBar() {}

// @layout(size = 4, align = 4)
// @derive(Default)
type Bar struct {
	// @field(offset = 0)
	F int32
}`,
			errMsg: "`NewBar` clashes with declaration NewBar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parser.ParseSource("test.go", []byte("package test\n"+tt.schema))
			if err != nil {
				t.Fatalf("ParseSource() error: %v", err)
			}
			_, err = AnalyzeFile(file)
			if !errors.Is(err, ErrNameCollision) {
				t.Fatalf("AnalyzeFile() error = %v, want ErrNameCollision", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestAnalyzeFile_DistinctNames(t *testing.T) {
	// Default is not derived, so NewBar is free for a record
	file, err := parser.ParseSource("test.go", []byte(`package test

// @layout(size = 4, align = 4)
type Bar struct {
	// @field(offset = 0)
	F int32
}

// @layout(size = 4, align = 4)
type NewBar struct {
	// @field(offset = 0)
	F int32
}
`))
	if err != nil {
		t.Fatalf("ParseSource() error: %v", err)
	}
	if _, err := AnalyzeFile(file); err != nil {
		t.Errorf("AnalyzeFile() error: %v", err)
	}
}
