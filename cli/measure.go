package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/fitbox/dsl"
	"github.com/ByLCY/fitbox/fit"
	"github.com/ByLCY/fitbox/fonts"
	"github.com/ByLCY/fitbox/layout"
	canvasrenderer "github.com/ByLCY/fitbox/renderer/canvas"
)

const sampleID = "sample"

type measureInput struct {
	width, height float64
	text          string
	font          string
	min, max      int
	strategy      string
	slack         int
}

type measureResult struct {
	Size     int      `json:"size"`
	Lines    []string `json:"lines"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Overflow bool     `json:"overflow"`
}

func measureCmd(root *rootOptions) *cobra.Command {
	var in measureInput
	var format string

	c := &cobra.Command{
		Use:   "measure",
		Short: "Find the largest font size at which a text fits a box",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cleanup, err := root.setup()
			defer cleanup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min") {
				in.min = cfg.Fit.MinSize
			}
			if !cmd.Flags().Changed("max") {
				in.max = cfg.Fit.MaxSize
			}

			ts, err := newTypesetter(cfg.Render.Shaper, "", canvasrenderer.NewRenderer(""))
			if err != nil {
				return err
			}
			res, err := measure(in, ts, cfg.Options())
			if err != nil {
				return err
			}
			return printMeasure(cmd.OutOrStdout(), in, res, format)
		},
	}

	c.Flags().Float64Var(&in.width, "width", 0, "Box width in px (required)")
	c.Flags().Float64Var(&in.height, "height", 0, "Box height in px (required)")
	c.Flags().StringVarP(&in.text, "text", "t", "", "Text to fit (required)")
	c.Flags().StringVar(&in.font, "font", fonts.DefaultBuiltin, "Font source: builtin:<name> or a font file")
	c.Flags().IntVar(&in.min, "min", 0, "Minimum font size in px (defaults to config)")
	c.Flags().IntVar(&in.max, "max", 0, "Maximum font size in px (defaults to config)")
	c.Flags().StringVar(&in.strategy, "strategy", "", "Measurement strategy: clone|inplace (defaults to config)")
	c.Flags().IntVar(&in.slack, "slack", 0, "Sizes subtracted from an in-place result")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("width")
	_ = c.MarkFlagRequired("height")
	_ = c.MarkFlagRequired("text")
	return c
}

// measureScene 把一次测量描述为只有一个 frame 的场景。
func measureScene(in measureInput) string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	var b strings.Builder
	b.WriteString("scene Measure v1 {\n")
	fmt.Fprintf(&b, "  resources {\n    font Sample {\n      src: %s\n    }\n  }\n", strconv.Quote(in.font))
	fmt.Fprintf(&b, "  canvas %spx %spx {\n", num(in.width), num(in.height))
	fmt.Fprintf(&b, "    frame box x 0 y 0 width %spx height %spx {\n", num(in.width), num(in.height))
	fmt.Fprintf(&b, "      fit id %s font Sample min %d max %d", sampleID, in.min, in.max)
	if in.strategy != "" {
		fmt.Fprintf(&b, " strategy %s", in.strategy)
	}
	if in.slack > 0 {
		fmt.Fprintf(&b, " slack %d", in.slack)
	}
	fmt.Fprintf(&b, " { %s }\n    }\n  }\n}\n", strconv.Quote(in.text))
	return b.String()
}

func measure(in measureInput, ts layout.Typesetter, base []fit.Option) (measureResult, error) {
	if in.width <= 0 || in.height <= 0 {
		return measureResult{}, errors.New("width 与 height 必须大于 0")
	}
	ast, err := dsl.ParseString(measureScene(in))
	if err != nil {
		return measureResult{}, fmt.Errorf("构造测量场景失败: %w", err)
	}
	doc, err := layout.Build(ast, layout.BuildOptions{Typesetter: ts})
	if err != nil {
		return measureResult{}, err
	}
	if err := doc.FitAll(base...); err != nil {
		return measureResult{}, err
	}
	snap, err := doc.Snapshot()
	if err != nil {
		return measureResult{}, err
	}
	if len(snap.Frames) != 1 || len(snap.Frames[0].Texts) != 1 {
		return measureResult{}, errors.New("测量场景结构异常")
	}
	tb := snap.Frames[0].Texts[0]
	res := measureResult{
		Size:     int(tb.FontSize),
		Width:    in.width,
		Height:   tb.Height,
		Overflow: tb.Overflow,
	}
	for _, l := range tb.Lines {
		res.Lines = append(res.Lines, l.Content)
	}
	return res, nil
}

func printMeasure(w io.Writer, in measureInput, res measureResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "pretty", "":
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s\n", styles.title.Render("size"), styles.size.Render(strconv.Itoa(res.Size)+"px"))
		fmt.Fprintf(&b, "%s %gx%g px, %s\n", styles.label.Render("box "), in.width, in.height, in.font)
		fmt.Fprintf(&b, "%s %.1f px, %d line(s)", styles.label.Render("text"), res.Height, len(res.Lines))
		for _, l := range res.Lines {
			fmt.Fprintf(&b, "\n  %s", styles.faint.Render(l))
		}
		if res.Overflow {
			fmt.Fprintf(&b, "\n%s", styles.warn.Render("overflow at the minimum size"))
		}
		fmt.Fprintln(w, styles.card.Render(b.String()))
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}
