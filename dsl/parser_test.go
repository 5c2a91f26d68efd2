package dsl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/fitbox/dsl"
)

const sampleDSL = `
scene Banner v1 {
  meta {
    title: "Launch banner"
    keywords: [
      "promo"
      "fit"
    ]
  }

  resources {
    font Body {
      src: "builtin:goregular"
    }

    color Accent = #0F62FE

    style Headline {
      font: Body
      color: Accent
      line-height: 1.2
    }
  }

  canvas 800px 600px background #fff {
    frame hero x 20px y 20px width 400px height 120px padding 8px {
      fit Headline min 8 max 200 strategy clone debounce 50ms { "Hello, ${user.name}!" }
      let greeting = data.user.name
    }
  }
}
`

func TestParseScene(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Banner" {
		t.Fatalf("expected scene name Banner, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{"meta", "resources", "canvas"}
	for i, sec := range doc.Sections {
		if sec.Kind() != kinds[i] {
			t.Fatalf("section %d: expected %s, got %s", i, kinds[i], sec.Kind())
		}
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	if got := string(*title.Value.String); got != "Launch banner" {
		t.Fatalf("unexpected title %s", got)
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.List == nil || len(keywords.Value.List.Values) != 2 {
		t.Fatalf("expected 2 keywords, got %+v", keywords)
	}

	canvas := doc.Canvas()
	if canvas == nil {
		t.Fatalf("canvas section missing")
	}
	if len(canvas.Params) != 4 {
		t.Fatalf("expected 4 canvas params, got %d", len(canvas.Params))
	}
	if canvas.Params[0].Value != "800px" || canvas.Params[3].Value != "#fff" {
		t.Fatalf("unexpected canvas params: %s", tokensToString(canvas.Params))
	}

	frame := canvas.Block.Statements[0].Command
	if frame == nil || frame.Name != "frame" {
		t.Fatalf("expected frame command, got %+v", canvas.Block.Statements[0])
	}
	if frame.Args[0].Value != "hero" || len(frame.Args) != 11 {
		t.Fatalf("unexpected frame args: %s", tokensToString(frame.Args))
	}

	fit := frame.Block.Statements[0].Command
	if fit == nil || fit.Name != "fit" {
		t.Fatalf("expected fit command, got %+v", frame.Block.Statements[0])
	}
	if got := tokensToString(fit.Args); got != "Headline min 8 max 200 strategy clone debounce 50ms" {
		t.Fatalf("unexpected fit args: %s", got)
	}
	if fit.Block == nil || fit.Block.Statements[0].Text == nil {
		t.Fatalf("fit command missing literal content")
	}
	if got := string(fit.Block.Statements[0].Text.Value); !strings.Contains(got, "${user.name}") {
		t.Fatalf("expected interpolation in text literal, got %s", got)
	}

	let := frame.Block.Statements[1].Command
	if let == nil || let.Name != "let" {
		t.Fatalf("expected let command, got %+v", frame.Block.Statements[1])
	}
	if got := tokensToString(let.Args); got != "greeting = data . user . name" {
		t.Fatalf("unexpected let args: %s", got)
	}
}

func TestParseStyleExpression(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	res := doc.Sections[1].Resources
	style := res.Block.Statements[2].Command
	if style == nil || style.Name != "style" {
		t.Fatalf("expected style command, got %+v", res.Block.Statements[2])
	}
	font := style.Block.Statements[0].Assignment
	if font == nil || font.Value.Expr == nil {
		t.Fatalf("font assignment should capture expression, got %+v", style.Block.Statements[0])
	}
	if got := tokensToString(font.Value.Expr.Tokens); got != "Body" {
		t.Fatalf("unexpected expression tokens: %s", got)
	}
	lh := style.Block.Statements[2].Assignment
	if lh == nil || lh.Value.Number == nil || *lh.Value.Number != "1.2" {
		t.Fatalf("expected numeric line-height, got %+v", lh)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"wrong root":     `doc X v1 { }`,
		"unclosed scene": `scene X v1 { canvas 10px 10px {`,
	}
	for name, input := range cases {
		if _, err := dsl.ParseString(input); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner.fit")
	if err := os.WriteFile(path, []byte(sampleDSL), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := dsl.ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if doc.Canvas() == nil {
		t.Fatalf("canvas missing after ParseFile")
	}
	if _, err := dsl.ParseFile(filepath.Join(t.TempDir(), "missing.fit")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCanvasMissing(t *testing.T) {
	doc, err := dsl.ParseString("scene Empty v1 {\n  meta { title: \"x\" }\n}\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Canvas() != nil {
		t.Fatalf("expected no canvas")
	}
}

func tokensToString(parts []*dsl.Token) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
