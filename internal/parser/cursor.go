package parser

import (
	gotoken "go/token"
	"strconv"

	"github.com/alexhholmes/structlayout/internal/token"
)

// cursor walks a flat token sequence with one token of lookahead.
type cursor struct {
	tokens []token.Token
	pos    int
}

func (c *cursor) end() bool {
	return c.pos >= len(c.tokens)
}

func (c *cursor) peek(i int) (token.Token, bool) {
	if c.pos+i >= len(c.tokens) {
		return token.Token{}, false
	}
	return c.tokens[c.pos+i], true
}

func (c *cursor) rest() []token.Token {
	return c.tokens[c.pos:]
}

func (c *cursor) isIdent(i int) bool {
	t, ok := c.peek(i)
	return ok && t.Kind == token.Ident
}

func (c *cursor) isKeyword(i int, name string) bool {
	t, ok := c.peek(i)
	return ok && t.Kind == token.Ident && t.Text == name
}

func (c *cursor) isPunct(i int, tok gotoken.Token) bool {
	t, ok := c.peek(i)
	return ok && t.Kind == token.Punct && t.Lit == tok
}

func (c *cursor) isGroup(i int, delim byte) bool {
	t, ok := c.peek(i)
	return ok && t.Kind == token.Group && t.Delim == delim
}

func (c *cursor) isLiteral(i int) bool {
	t, ok := c.peek(i)
	return ok && t.Kind == token.Literal
}

func (c *cursor) ident() (string, bool) {
	if !c.isIdent(0) {
		return "", false
	}
	t := c.tokens[c.pos]
	c.pos++
	return t.Text, true
}

// comma consumes a separating comma. Reaching the end also counts as a
// separator, so a trailing comma is optional.
func (c *cursor) comma() bool {
	if c.end() {
		return true
	}
	if c.isPunct(0, gotoken.COMMA) {
		c.pos++
		return true
	}
	return false
}

// keyValue consumes `ident = literal`.
func (c *cursor) keyValue() (string, token.Token, bool) {
	if !(c.isIdent(0) && c.isPunct(1, gotoken.ASSIGN) && c.isLiteral(2)) {
		return "", token.Token{}, false
	}
	key := c.tokens[c.pos].Text
	value := c.tokens[c.pos+2]
	c.pos += 3
	return key, value, true
}

// meta consumes `ident(...)`.
func (c *cursor) meta() (string, token.Token, bool) {
	if !(c.isIdent(0) && c.isGroup(1, '(')) {
		return "", token.Token{}, false
	}
	name := c.tokens[c.pos].Text
	args := c.tokens[c.pos+1]
	c.pos += 2
	return name, args, true
}

// uintArg parses `name = <uint>` followed by a separator.
func (c *cursor) uintArg(name string) (uint64, error) {
	if c.end() {
		return 0, errorf(MissingArgument, "missing %s argument, expecting `%s = <uint>`", name, name)
	}
	if c.isKeyword(0, name) && !(c.isPunct(1, gotoken.ASSIGN) && c.isLiteral(2)) {
		return 0, errorf(MalformedArgument, "invalid format for %s argument, expecting `%s = <uint>`", name, name)
	}
	key, value, ok := c.keyValue()
	if !ok || key != name {
		found, _ := c.peek(0)
		if ok {
			found = token.Token{Text: key}
		}
		return 0, errorf(MissingArgument, "missing %s argument, expecting `%s = <uint>`, found `%s`", name, name, found.Text)
	}
	if value.Lit != gotoken.INT {
		return 0, errorf(MalformedArgument, "error parsing %s argument: %s is not an unsigned integer", name, value.Text)
	}
	n, err := strconv.ParseUint(value.Text, 0, 64)
	if err != nil {
		return 0, errorf(MalformedArgument, "error parsing %s argument: %v", name, err)
	}
	if !c.comma() {
		return 0, errorf(MalformedArgument, "invalid format for %s argument, expecting `%s = <uint>`", name, name)
	}
	return n, nil
}
