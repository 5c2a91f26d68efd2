package dsl

import (
	"errors"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// Document is the root AST node of a scene file:
//
//	scene <Name> <version> { meta {...} resources {...} canvas <w> <h> {...} }
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'scene' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Canvas returns the first canvas section, or nil when the scene has none.
func (d *Document) Canvas() *CanvasSection {
	if d == nil {
		return nil
	}
	for _, sec := range d.Sections {
		if sec.Canvas != nil {
			return sec.Canvas
		}
	}
	return nil
}

// Section is one top-level section.
type Section struct {
	Meta      *MetaSection      `parser:"  'meta' @@"`
	Resources *ResourcesSection `parser:"| 'resources' @@"`
	Canvas    *CanvasSection    `parser:"| @@"`
}

// Kind returns the section keyword.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Canvas != nil:
		return "canvas"
	}
	return "unknown"
}

type MetaSection struct {
	Block *Block `parser:"@@"`
}

// ResourcesSection holds font, color and style declarations.
type ResourcesSection struct {
	Block *Block `parser:"@@"`
}

// CanvasSection declares the drawing surface: `canvas <width> <height> [key value]... { frames }`.
type CanvasSection struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Params []*Token       `parser:"'canvas' @@*"`
	Block  *Block         `parser:"Newline* @@"`
}

// Block is a braced list of statements separated by newlines or ';'.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is exactly one of an assignment, a command or a text literal.
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment is `key: value`.
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command is `name arg... [{ block }]`, e.g. `frame hero width 200px { ... }`.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Token       `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// TextLiteral is a bare string statement, the content of fit and text nodes.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value is the right-hand side of an assignment.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	List   *List          `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// List is `[a, b]`; newlines also separate items.
type List struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Expression keeps the raw tokens of any other value, such as an identifier.
type Expression struct {
	Tokens []*Token
}

// StringLiteral is unquoted on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return errors.New("empty string literal")
	}
	v, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(v)
	return nil
}
