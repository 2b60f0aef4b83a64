package parser

import (
	"strings"

	"github.com/alexhholmes/structlayout/internal/token"
)

// RecordLayout holds the parsed @layout arguments of a record.
type RecordLayout struct {
	Size  uint64 // Record size in bytes
	Align uint64 // Record alignment in bytes
	Check string // Capability bound on field types, empty for the default
}

// MaxAlign is the largest alignment Go can force on a struct.
const MaxAlign = 8

// DerivedBehavior is a record-wide method generated from field accessors.
type DerivedBehavior int

const (
	BitwiseCopy DerivedBehavior = iota
	Clone
	DebugFormat
	DefaultConstruct
)

var derivedBehaviors = map[string]DerivedBehavior{
	"Copy":    BitwiseCopy,
	"Clone":   Clone,
	"Debug":   DebugFormat,
	"Default": DefaultConstruct,
}

func (d DerivedBehavior) String() string {
	switch d {
	case BitwiseCopy:
		return "Copy"
	case Clone:
		return "Clone"
	case DebugFormat:
		return "Debug"
	case DefaultConstruct:
		return "Default"
	default:
		return "unknown"
	}
}

type attributeKind int

const (
	layoutAttribute attributeKind = iota + 1
	deriveAttribute
	fieldAttribute
)

var attributeKinds = map[string]attributeKind{
	"layout": layoutAttribute,
	"derive": deriveAttribute,
	"field":  fieldAttribute,
}

// Attribute is an `@name(args)` line found in a doc comment.
type Attribute struct {
	Name    string
	Args    []token.Token
	HasArgs bool
}

func (a *Attribute) kind() (attributeKind, bool) {
	k, ok := attributeKinds[a.Name]
	return k, ok
}

// ParseAttribute parses an attribute line with comment markers removed,
// e.g. "@layout(size = 16, align = 4)".
func ParseAttribute(line string) (*Attribute, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "@") {
		return nil, errorf(MalformedAttribute, "attribute must start with `@`")
	}

	tokens, err := token.Scan(line[1:])
	if err != nil {
		return nil, errorf(MalformedAttribute, "invalid attribute syntax: %v", err)
	}
	if len(tokens) == 0 || tokens[0].Kind != token.Ident {
		return nil, errorf(MalformedAttribute, "invalid attribute syntax, expecting `@name(..)`")
	}

	attr := &Attribute{Name: tokens[0].Text}
	switch {
	case len(tokens) == 1:
	case len(tokens) == 2 && tokens[1].Kind == token.Group && tokens[1].Delim == '(':
		attr.Args = tokens[1].Inner
		attr.HasArgs = true
	default:
		return nil, errorf(MalformedAttribute, "found extra tokens after `@%s` attribute, expecting `@%s(..)`", attr.Name, attr.Name)
	}
	return attr, nil
}

// ParseLayout parses the arguments of the struct-level attribute:
//
//	size = <uint>, align = <uint>[, check(<constraint>)]
//
// Arguments are recognized exactly once and in this order.
func ParseLayout(args []token.Token) (RecordLayout, error) {
	c := &cursor{tokens: args}

	size, err := c.uintArg("size")
	if err != nil {
		return RecordLayout{}, err
	}
	align, err := c.uintArg("align")
	if err != nil {
		return RecordLayout{}, err
	}
	check, err := parseCheck(c)
	if err != nil {
		return RecordLayout{}, err
	}
	if !c.end() {
		return RecordLayout{}, errorf(UnexpectedTrailingTokens, "unexpected additional tokens found: `%s`", token.Join(c.rest()))
	}

	if align == 0 || align&(align-1) != 0 || align > MaxAlign {
		return RecordLayout{}, errorf(InvalidAlign, "align must be a power of 2 no larger than %d, got: %d", MaxAlign, align)
	}

	return RecordLayout{Size: size, Align: align, Check: check}, nil
}

func parseCheck(c *cursor) (string, error) {
	name, args, ok := c.meta()
	if !ok {
		return "", nil
	}
	if name != "check" {
		return "", errorf(MalformedArgument, "invalid format for check argument, expecting `check(Constraint)`, found `%s`", name)
	}
	check := args.Contents()
	if check == "" {
		return "", errorf(MalformedArgument, "empty check argument, expecting `check(Constraint)`")
	}
	if !c.comma() {
		return "", errorf(MalformedArgument, "invalid format for check argument, expecting `check(Constraint)`")
	}
	return check, nil
}

// ParseDerive parses the comma separated names of a @derive attribute.
func ParseDerive(args []token.Token) ([]DerivedBehavior, error) {
	c := &cursor{tokens: args}

	var result []DerivedBehavior
	for !c.end() {
		name, ok := c.ident()
		if !ok {
			return nil, errorf(MalformedAttribute, "derive attribute: expecting list of comma separated identifiers")
		}
		d, ok := derivedBehaviors[name]
		if !ok {
			return nil, errorf(UnsupportedDerivedBehavior, "derive attribute: unsupported derive `%s`, expecting one of Copy, Clone, Debug, Default", name)
		}
		result = append(result, d)
		if !c.comma() {
			return nil, errorf(MalformedAttribute, "derive attribute: expecting comma after %s", name)
		}
	}
	return result, nil
}

// CleanComment removes comment markers from a line
// "// @layout(size = 16)" → "@layout(size = 16)"
// "/* @layout(size = 16) */" → "@layout(size = 16)"
func CleanComment(line string) string {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "//") {
		return strings.TrimSpace(strings.TrimPrefix(line, "//"))
	}

	if strings.HasPrefix(line, "/*") && strings.HasSuffix(line, "*/") {
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		return strings.TrimSpace(line)
	}

	return line
}

// IsAttribute reports whether a cleaned comment line is an attribute.
func IsAttribute(cleaned string) bool {
	return strings.HasPrefix(cleaned, "@")
}
