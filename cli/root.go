// Package cli 实现 fitbox 命令行：render、watch、measure、schema 与 fonts。
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ByLCY/fitbox/config"
	"github.com/ByLCY/fitbox/logger"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// rootOptions 保存所有子命令共享的持久参数。
type rootOptions struct {
	configPath string
	debug      bool
}

// setup 读取配置并初始化日志，返回的 cleanup 总是非 nil。
func (o *rootOptions) setup() (config.Config, func(), error) {
	noop := func() {}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, noop, err
	}
	lc := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if o.debug {
		lc.Level = "debug"
	}
	cleanup, err := logger.Setup(lc)
	if err != nil {
		return cfg, noop, err
	}
	return cfg, func() { _ = cleanup() }, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "fitbox",
		Short:        "fitbox: fit text to its frame at the largest font size",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml/.yml/.toml/.json)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(renderCmd(opts))
	cmd.AddCommand(watchCmd(opts))
	cmd.AddCommand(measureCmd(opts))
	cmd.AddCommand(schemaCmd())
	cmd.AddCommand(fontsCmd())
	return cmd
}
