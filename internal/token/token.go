// Package token turns attribute text into a tree of identifiers,
// punctuation, literals and delimited groups.
//
// Attribute arguments such as `size = 16, align = 4, check(any)` are
// scanned with the Go scanner, so literals follow Go syntax. Groups keep
// their raw source text so that opaque arguments can be re-emitted
// verbatim.
package token

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"
	"strings"
)

type Kind int

const (
	Ident Kind = iota
	Punct
	Literal
	Group
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Punct:
		return "punctuation"
	case Literal:
		return "literal"
	case Group:
		return "group"
	default:
		return "unknown"
	}
}

// Token is a single node of the token tree.
type Token struct {
	Kind Kind
	// Text is the identifier name, the operator, the literal source text,
	// or for groups the full source text including both delimiters.
	Text string
	// Lit is the literal kind (INT, STRING, ...) for Literal tokens.
	Lit gotoken.Token
	// Delim is the opening delimiter of a group: '(', '[' or '{'.
	Delim byte
	// Inner holds the tokens between the delimiters of a group.
	Inner []Token
	// Offset is the byte offset of the token in the scanned text.
	Offset int
}

// Contents returns the raw text between the delimiters of a group,
// trimmed of surrounding space.
func (t Token) Contents() string {
	if t.Kind != Group || len(t.Text) < 2 {
		return ""
	}
	return strings.TrimSpace(t.Text[1 : len(t.Text)-1])
}

func (t Token) String() string {
	return t.Text
}

var closers = map[gotoken.Token]gotoken.Token{
	gotoken.LPAREN: gotoken.RPAREN,
	gotoken.LBRACK: gotoken.RBRACK,
	gotoken.LBRACE: gotoken.RBRACE,
}

type frame struct {
	open   gotoken.Token
	offset int
	tokens []Token
}

// Scan tokenizes src into a token tree.
func Scan(src string) ([]Token, error) {
	fset := gotoken.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos gotoken.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	stack := []*frame{{}}
	for {
		pos, tok, lit := s.Scan()
		if tok == gotoken.EOF {
			break
		}
		off := file.Offset(pos)
		top := stack[len(stack)-1]

		switch {
		case tok == gotoken.SEMICOLON && lit == "\n":
			// automatically inserted
			continue
		case tok == gotoken.IDENT || tok.IsKeyword():
			top.tokens = append(top.tokens, Token{Kind: Ident, Text: lit, Offset: off})
		case tok.IsLiteral():
			top.tokens = append(top.tokens, Token{Kind: Literal, Text: lit, Lit: tok, Offset: off})
		case tok == gotoken.LPAREN || tok == gotoken.LBRACK || tok == gotoken.LBRACE:
			stack = append(stack, &frame{open: tok, offset: off})
		case tok == gotoken.RPAREN || tok == gotoken.RBRACK || tok == gotoken.RBRACE:
			if len(stack) == 1 || closers[top.open] != tok {
				return nil, fmt.Errorf("unbalanced %q at offset %d", tok.String(), off)
			}
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.tokens = append(parent.tokens, Token{
				Kind:   Group,
				Text:   src[top.offset : off+1],
				Delim:  top.open.String()[0],
				Inner:  top.tokens,
				Offset: top.offset,
			})
		case tok == gotoken.ILLEGAL:
			// reported through the error handler
		default:
			top.tokens = append(top.tokens, Token{Kind: Punct, Text: tok.String(), Lit: tok, Offset: off})
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	if len(stack) != 1 {
		top := stack[len(stack)-1]
		return nil, fmt.Errorf("unclosed %q at offset %d", top.open.String(), top.offset)
	}
	return stack[0].tokens, nil
}

// Join renders tokens back to source text separated by single spaces,
// except that groups are rendered from their raw text.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
