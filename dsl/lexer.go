package dsl

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// sceneLexer 的规则顺序即匹配优先级：颜色需先于 # 注释，字符串先于括号。
var sceneLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Newline", Pattern: `\n+`},
	{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})\b`},
	{Name: "HashComment", Pattern: `#[^\n]*`},
	{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:px|pt|mm|cm|in|ms|%|x)?`},
	{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:$]`},
	{Name: "LBrace", Pattern: `{`},
	{Name: "RBrace", Pattern: `}`},
})

var (
	typeNames = map[lexer.TokenType]string{}

	newlineType = tokenType("Newline")
	lbraceType  = tokenType("LBrace")
	rbraceType  = tokenType("RBrace")
	symbolType  = tokenType("Symbol")
	stringType  = tokenType("String")
)

func init() {
	for name, tt := range sceneLexer.Symbols() {
		typeNames[tt] = name
	}
}

func tokenType(name string) lexer.TokenType {
	tt, ok := sceneLexer.Symbols()[name]
	if !ok {
		panic(fmt.Sprintf("dsl: lexer has no %s token", name))
	}
	return tt
}

// Token 是命令参数与表达式中的单个词法单元。Value 为去引号后的值，Raw 为原文。
type Token struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

func newToken(tok lexer.Token) (Token, error) {
	t := Token{
		Type:  typeNames[tok.Type],
		Value: tok.Value,
		Raw:   tok.Value,
		Pos:   tok.Pos,
	}
	if t.Type == "" {
		t.Type = fmt.Sprintf("#%d", tok.Type)
	}
	if tok.Type == stringType {
		v, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Token{}, fmt.Errorf("%s: %w", tok.Pos, err)
		}
		t.Value = v
	}
	return t, nil
}

// nesting 跟踪表达式中的括号层级，只有在最外层时换行与分隔符才结束表达式。
type nesting struct {
	paren, bracket int
}

func (n *nesting) track(raw string) {
	switch raw {
	case "(":
		n.paren++
	case ")":
		n.paren = max(0, n.paren-1)
	case "[":
		n.bracket++
	case "]":
		n.bracket = max(0, n.bracket-1)
	}
}

func (n nesting) outer() bool { return n.paren == 0 && n.bracket == 0 }

// endsArgs 判断 tok 是否结束一条命令的参数列表。
func endsArgs(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineType, lbraceType, rbraceType:
		return true
	case symbolType:
		return tok.Value == ";"
	}
	return false
}

// endsExpr 判断 tok 是否结束一个表达式值。
func endsExpr(tok *lexer.Token, n nesting) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineType, lbraceType, rbraceType:
		return n.outer()
	case symbolType:
		switch tok.Value {
		case ";", ",":
			return n.outer()
		case "]":
			return n.bracket == 0
		}
	}
	return false
}
