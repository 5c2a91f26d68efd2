package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/fitbox/logger"
)

func renderCmd(root *rootOptions) *cobra.Command {
	var input, output, dataJSON, debugJSON, format string

	c := &cobra.Command{
		Use:   "render",
		Short: "Fit every text of a scene once and render it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cleanup, err := root.setup()
			defer cleanup()
			if err != nil {
				return err
			}

			f, err := resolveFormat(format, output, cfg.Render.Format)
			if err != nil {
				return err
			}
			p, err := newPipeline(input, dataJSON, f, cfg)
			if err != nil {
				return err
			}
			doc, loader, err := p.build()
			if err != nil {
				return err
			}
			p.useFonts(loader)

			// 字体就绪后再测量，结果才与最终渲染一致
			select {
			case <-loader.Ready():
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
			if err := loader.Err(); err != nil {
				logger.L().Warn("fonts.load_failed", "err", err)
			}

			if err := doc.FitAll(cfg.Options()...); err != nil {
				return fmt.Errorf("适配失败: %w", err)
			}
			out := outputPath(input, output, f)
			if err := p.write(doc, out, debugJSON); err != nil {
				return err
			}
			logger.L().Info("render.done", "out", out, "format", string(f))

			w := cmd.OutOrStdout()
			printSizes(w, doc)
			fmt.Fprintf(w, "%s %s\n", styles.label.Render("已生成"), out)
			return nil
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "Scene file (required)")
	c.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the scene name with the format extension)")
	c.Flags().StringVar(&dataJSON, "data", "", "JSON data bound to ${...} placeholders")
	c.Flags().StringVar(&debugJSON, "debug-json", "", "Write the layout snapshot as JSON to this path")
	c.Flags().StringVarP(&format, "format", "f", "", "Output format: pdf|svg|png")

	_ = c.MarkFlagRequired("input")
	return c
}
