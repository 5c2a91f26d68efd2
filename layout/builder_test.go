package layout_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/fitbox/dsl"
	"github.com/ByLCY/fitbox/layout"
)

const sceneDSL = `
scene Poster v1 {
  meta {
    title: "Poster"
    author: "fitbox"
  }

  resources {
    font Display {
      src: "builtin:gobold"
    }
    color Ink = #112233
    style Base {
      color: Ink
    }
    style Headline extends Base {
      font: Display
      line-height: 1.2
    }
  }

  canvas 800px 600px background #ffffff {
    frame hero x 10px y 20px width 200px height 50px {
      fit Headline id title min 8 max 100 strategy clone debounce 0 { "Hello" }
    }
    frame note x 10px y 100px width 50% height 100px padding 10px border #000 {
      text size 12px align center { "Hi ${user.name}" }
    }
  }
}
`

func mustBuild(t *testing.T, src string, opts layout.BuildOptions) *layout.Document {
	t.Helper()
	ast, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	doc, err := layout.Build(ast, opts)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	return doc
}

func userData(name string) any {
	return map[string]any{"user": map[string]any{"name": name}}
}

func TestBuildScene(t *testing.T) {
	doc := mustBuild(t, sceneDSL, layout.BuildOptions{Data: userData("Ada")})

	canvas := doc.Canvas()
	if canvas.Width != 800 || canvas.Height != 600 {
		t.Fatalf("画布尺寸错误: %+v", canvas)
	}
	if canvas.Background == nil || *canvas.Background != (layout.Color{R: 255, G: 255, B: 255}) {
		t.Fatalf("画布背景错误: %+v", canvas.Background)
	}

	frames := doc.Frames()
	if len(frames) != 2 || frames[0].ID() != "hero" || frames[1].ID() != "note" {
		t.Fatalf("frame 解析错误: %d", len(frames))
	}
	if size := frames[1].Size(); size.Width != 400 || size.Height != 100 {
		t.Fatalf("百分比宽度应相对画布解析: %+v", size)
	}
	if client, _ := frames[1].ClientSize(); client.Width != 380 || client.Height != 80 {
		t.Fatalf("内容区应扣除 padding: %+v", client)
	}

	title, ok := doc.Node("title")
	if !ok {
		t.Fatalf("找不到节点 title")
	}
	if title.Frame() != frames[0] {
		t.Fatalf("节点所属 frame 错误")
	}
	if title.FontSize() != layout.DefaultFontSize {
		t.Fatalf("首次适配前应使用默认字号，实际 %v", title.FontSize())
	}
	spec := title.Fit()
	if spec.MinSize != 8 || spec.MaxSize != 100 || spec.Strategy != layout.StrategyClone {
		t.Fatalf("fit 参数解析错误: %+v", spec)
	}
	if spec.Debounce == nil || *spec.Debounce != 0 {
		t.Fatalf("debounce 解析错误: %v", spec.Debounce)
	}

	note, ok := doc.Node("note.text")
	if !ok {
		t.Fatalf("未声明 id 的节点应以 frame 名派生 ID")
	}
	if note.Content() != "Hi Ada" {
		t.Fatalf("插值错误: %q", note.Content())
	}
	if note.FontSize() != 12 {
		t.Fatalf("text 字号错误: %v", note.FontSize())
	}
	if spec := note.Fit(); spec.MinSize != 12 || spec.MaxSize != 12 || *spec.ObserveResize {
		t.Fatalf("text 应锁定字号且不观察: %+v", spec)
	}
}

func TestBuildSnapshotResources(t *testing.T) {
	doc := mustBuild(t, sceneDSL, layout.BuildOptions{})
	res, err := doc.Snapshot()
	if err != nil {
		t.Fatalf("快照失败: %v", err)
	}
	if res.Meta.Title != "Poster" || res.Meta.Author != "fitbox" {
		t.Fatalf("meta 错误: %+v", res.Meta)
	}
	if _, ok := res.Resources.Fonts[layout.DefaultFontName]; !ok {
		t.Fatalf("应自动注册默认字体")
	}
	if res.Resources.Fonts["Display"].Src != "builtin:gobold" {
		t.Fatalf("字体资源错误: %+v", res.Resources.Fonts["Display"])
	}
	headline := res.Resources.Styles["Headline"]
	if headline.Props["color"] != "Ink" || headline.Props["font"] != "Display" {
		t.Fatalf("style 继承错误: %+v", headline.Props)
	}
	text := res.Frames[0].Texts[0]
	if text.Color != (layout.Color{R: 0x11, G: 0x22, B: 0x33}) || text.Font != "Display" {
		t.Fatalf("文本样式错误: %+v", text)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"缺少 canvas":     "scene X v1 {\n  meta { title: \"x\" }\n}\n",
		"未定义 style":     "scene X v1 {\n  canvas 10px 10px {\n    frame a { fit Nope { \"x\" } }\n  }\n}\n",
		"重复 ID":         "scene X v1 {\n  canvas 10px 10px {\n    frame a\n    frame a\n  }\n}\n",
		"多个文本":          "scene X v1 {\n  canvas 10px 10px {\n    frame a {\n      fit { \"x\" }\n      fit { \"y\" }\n    }\n  }\n}\n",
		"未知策略":          "scene X v1 {\n  canvas 10px 10px {\n    frame a { fit strategy wobble { \"x\" } }\n  }\n}\n",
		"非法 min":        "scene X v1 {\n  canvas 10px 10px {\n    frame a { fit min abc { \"x\" } }\n  }\n}\n",
		"未知资源":          "scene X v1 {\n  resources {\n    image Logo\n  }\n  canvas 10px 10px\n  {\n  }\n}\n",
		"style 循环":      "scene X v1 {\n  resources {\n    style A extends B\n    style B extends A\n  }\n  canvas 10px 10px {\n  }\n}\n",
		"canvas 尺寸无效":   "scene X v1 {\n  canvas 0px 10px {\n  }\n}\n",
		"min 为 0":       "scene X v1 {\n  canvas 10px 10px {\n    frame a { fit min 0 { \"x\" } }\n  }\n}\n",
		"max 为 0":       "scene X v1 {\n  canvas 10px 10px {\n    frame a { fit max 0 { \"x\" } }\n  }\n}\n",
		"clone 带 slack": "scene X v1 {\n  canvas 10px 10px {\n    frame a { fit strategy clone slack 4 { \"x\" } }\n  }\n}\n",
	}
	for name, src := range cases {
		ast, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: 解析失败: %v", name, err)
		}
		if _, err := layout.Build(ast, layout.BuildOptions{}); err == nil {
			t.Fatalf("%s: 期望构建失败", name)
		}
	}
}

func TestParseDebounceUnits(t *testing.T) {
	src := strings.Replace(sceneDSL, "debounce 0", "debounce 250ms", 1)
	doc := mustBuild(t, src, layout.BuildOptions{})
	title, _ := doc.Node("title")
	if d := title.Fit().Debounce; d == nil || *d != 250*time.Millisecond {
		t.Fatalf("debounce 单位解析错误: %v", d)
	}
}

func TestFontSources(t *testing.T) {
	ast, err := dsl.ParseString(sceneDSL)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	srcs, err := layout.FontSources(ast, "/scenes")
	if err != nil {
		t.Fatalf("收集字体失败: %v", err)
	}
	want := []string{"builtin:goregular", "builtin:gobold"}
	if !slices.Equal(srcs, want) {
		t.Fatalf("字体来源 %v，期望 %v", srcs, want)
	}

	src := `
scene Fonts v1 {
  resources {
    font Local {
      src: "fonts/a.ttf"
      fallback: "builtin:gomono"
    }
    font Again {
      src: "fonts/a.ttf"
    }
  }
  canvas 10px 10px {
  }
}
`
	ast, err = dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	srcs, err = layout.FontSources(ast, "/scenes")
	if err != nil {
		t.Fatalf("收集字体失败: %v", err)
	}
	want = []string{"/scenes/fonts/a.ttf", "builtin:goregular", "builtin:gomono"}
	if !slices.Equal(srcs, want) {
		t.Fatalf("字体来源 %v，期望 %v", srcs, want)
	}
}
