package parser

import (
	"strings"

	"github.com/alexhholmes/structlayout/internal/token"
)

// AccessorKind is one generated operation against a field.
type AccessorKind uint8

const (
	Read            AccessorKind = 1 << iota // get: copy out, any offset
	Write                                    // set: copy in, any offset
	BorrowImmutable                          // ref: pointer for reading, aligned
	BorrowMutable                            // mut: pointer for writing, aligned
)

// AccessorKinds lists every kind in emission order.
var AccessorKinds = []AccessorKind{Read, Write, BorrowImmutable, BorrowMutable}

var accessorKeywords = map[string]AccessorKind{
	"get": Read,
	"set": Write,
	"ref": BorrowImmutable,
	"mut": BorrowMutable,
}

func (k AccessorKind) String() string {
	switch k {
	case Read:
		return "get"
	case Write:
		return "set"
	case BorrowImmutable:
		return "ref"
	case BorrowMutable:
		return "mut"
	default:
		return "unknown"
	}
}

// AccessorSet is a set of accessor kinds.
type AccessorSet uint8

const AllAccessors = AccessorSet(Read | Write | BorrowImmutable | BorrowMutable)

func (s AccessorSet) Has(k AccessorKind) bool {
	return s&AccessorSet(k) != 0
}

// Kinds returns the members of s in emission order.
func (s AccessorSet) Kinds() []AccessorKind {
	var kinds []AccessorKind
	for _, k := range AccessorKinds {
		if s.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (s AccessorSet) String() string {
	kinds := s.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}

// FieldLayout holds the parsed layout attribute of a field.
type FieldLayout struct {
	Offset uint64      // Byte offset of the field within the record
	Kinds  AccessorSet // Requested accessors, never empty
}

// ParseFieldLayout parses the arguments of a field layout attribute:
//
//	offset = <uint>[, get][, set][, ref][, mut]
//
// Listing no accessor kind enables all four.
func ParseFieldLayout(args []token.Token) (FieldLayout, error) {
	c := &cursor{tokens: args}

	offset, err := c.uintArg("offset")
	if err != nil {
		return FieldLayout{}, err
	}

	var kinds AccessorSet
	for !c.end() {
		name, ok := c.ident()
		if !ok {
			return FieldLayout{}, errorf(InvalidAccessorKind, "expecting an identifier of `get`, `set`, `ref` or `mut`, found `%s`", token.Join(c.rest()))
		}
		kind, ok := accessorKeywords[name]
		if !ok {
			return FieldLayout{}, errorf(InvalidAccessorKind, "expecting an identifier of `get`, `set`, `ref` or `mut`, found `%s`", name)
		}
		kinds |= AccessorSet(kind)
		if !c.comma() {
			return FieldLayout{}, errorf(MalformedArgument, "expecting comma after %s", name)
		}
	}

	if kinds == 0 {
		kinds = AllAccessors
	}
	return FieldLayout{Offset: offset, Kinds: kinds}, nil
}

// ParseTag parses the value of a `layout:"..."` struct tag, which uses the
// same syntax as the arguments of @field.
//
// Examples:
//
//	"offset = 4"            → all accessors at byte 4
//	"offset = 3, get, set"  → copy accessors only, any alignment
//	"offset=0x10,ref"       → read pointer at byte 16
func ParseTag(tag string) (FieldLayout, error) {
	if strings.TrimSpace(tag) == "" {
		return FieldLayout{}, errorf(MissingArgument, "empty layout tag, expecting `offset = <uint>`")
	}
	tokens, err := token.Scan(tag)
	if err != nil {
		return FieldLayout{}, errorf(MalformedAttribute, "invalid layout tag syntax: %v", err)
	}
	return ParseFieldLayout(tokens)
}
