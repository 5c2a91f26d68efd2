// Package dsl 定义 fitbox 场景文件的语法，并将其解析为 AST。
package dsl

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var sceneParser = participle.MustBuild[Document](
	participle.Lexer(sceneLexer),
	participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
)

// Parse parses scene content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return sceneParser.Parse("", r)
}

// ParseString parses scene content from a string.
func ParseString(input string) (*Document, error) {
	return sceneParser.ParseString("", input)
}

// ParseFile reads and parses a scene file; positions in errors carry the file name.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取场景文件失败: %w", err)
	}
	return sceneParser.ParseBytes(path, data)
}

// Parse implements participle.Parseable: a Token matches any single token
// up to the end of the argument list.
func (t *Token) Parse(lex *lexer.PeekingLexer) error {
	if endsArgs(lex.Peek()) {
		return participle.NextMatch
	}
	tok, err := newToken(*lex.Next())
	if err != nil {
		return err
	}
	*t = tok
	return nil
}

// Parse implements participle.Parseable: an Expression takes tokens until a
// newline, brace or separator at the outermost nesting level.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	var (
		n      nesting
		tokens []*Token
	)
	for !endsExpr(lex.Peek(), n) {
		tok, err := newToken(*lex.Next())
		if err != nil {
			return err
		}
		n.track(tok.Raw)
		tokens = append(tokens, &tok)
	}
	if len(tokens) == 0 {
		return participle.NextMatch
	}
	e.Tokens = tokens
	return nil
}
