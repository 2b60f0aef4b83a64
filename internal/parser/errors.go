package parser

import (
	"fmt"
	"go/token"
	"strings"
)

// ErrorKind classifies structural schema errors. Every kind is also an
// error value so callers can test for it with errors.Is.
type ErrorKind int

const (
	MissingArgument ErrorKind = iota + 1
	MalformedArgument
	UnexpectedTrailingTokens
	MalformedAttribute
	UnsupportedAttribute
	UnsupportedDerivedBehavior
	MissingFieldLayout
	DuplicateFieldLayout
	InvalidAccessorKind
	UnsupportedTarget
	InvalidAlign
)

var errorKindNames = map[ErrorKind]string{
	MissingArgument:            "missing argument",
	MalformedArgument:          "malformed argument",
	UnexpectedTrailingTokens:   "unexpected trailing tokens",
	MalformedAttribute:         "malformed attribute",
	UnsupportedAttribute:       "unsupported attribute",
	UnsupportedDerivedBehavior: "unsupported derive",
	MissingFieldLayout:         "missing field layout",
	DuplicateFieldLayout:       "duplicate field layout",
	InvalidAccessorKind:        "invalid accessor kind",
	UnsupportedTarget:          "unsupported target",
	InvalidAlign:               "invalid align",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) Error() string {
	return k.String()
}

// Error is a fatal schema error. Parsing stops at the first one and no
// records are returned.
type Error struct {
	Kind   ErrorKind
	Pos    token.Position
	Record string
	Field  string
	Msg    string
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Scope names the record or field the error belongs to.
func (e *Error) Scope() string {
	switch {
	case e.Record != "" && e.Field != "":
		return e.Record + "." + e.Field
	case e.Record != "":
		return e.Record
	default:
		return e.Field
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}
	if scope := e.Scope(); scope != "" {
		b.WriteString(scope)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// at fills in location details that the argument parsers do not know.
func (e *Error) at(pos token.Position, record, field string) *Error {
	if !e.Pos.IsValid() {
		e.Pos = pos
	}
	if e.Record == "" {
		e.Record = record
	}
	if e.Field == "" {
		e.Field = field
	}
	return e
}
