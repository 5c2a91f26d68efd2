// Package config 读取 fitbox 的配置文件（YAML、TOML 或 JSON），
// 并将其转换为适配会话与渲染所需的选项。
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/fitbox/fit"
)

// ErrInvalid 标记配置校验失败。
var ErrInvalid = errors.New("配置无效")

// Config 是配置文件的根结构。
type Config struct {
	Fit    FitConfig    `yaml:"fit" toml:"fit" json:"fit"`
	Log    LogConfig    `yaml:"log" toml:"log" json:"log"`
	Render RenderConfig `yaml:"render" toml:"render" json:"render"`
}

// FitConfig 是所有适配会话的默认参数，场景中的 fit 声明可逐项覆盖。
type FitConfig struct {
	MinSize                int    `yaml:"minSize" toml:"min_size" json:"minSize" jsonschema:"minimum=1,default=8"`
	MaxSize                int    `yaml:"maxSize" toml:"max_size" json:"maxSize" jsonschema:"minimum=1,default=512"`
	ObserveContainerResize bool   `yaml:"observeContainerResize" toml:"observe_container_resize" json:"observeContainerResize" jsonschema:"default=true"`
	ObserveContentMutation bool   `yaml:"observeContentMutation" toml:"observe_content_mutation" json:"observeContentMutation" jsonschema:"default=true"`
	RefitOnFontLoad        bool   `yaml:"refitOnFontLoad" toml:"refit_on_font_load" json:"refitOnFontLoad" jsonschema:"default=true"`
	DebounceMS             int    `yaml:"debounceMs" toml:"debounce_ms" json:"debounceMs" jsonschema:"minimum=0,default=100"`
	Strategy               string `yaml:"strategy" toml:"strategy" json:"strategy" jsonschema:"enum=clone,enum=inplace"`
	InPlaceSlack           int    `yaml:"inPlaceSlack" toml:"in_place_slack" json:"inPlaceSlack" jsonschema:"minimum=0"`
}

// LogConfig 控制日志输出。
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Format string `yaml:"format" toml:"format" json:"format" jsonschema:"enum=text,enum=json,default=text"`
	// File 为空时输出到 stderr。
	File string `yaml:"file" toml:"file" json:"file"`
}

// RenderConfig 控制排版后端与输出格式。
type RenderConfig struct {
	Shaper string `yaml:"shaper" toml:"shaper" json:"shaper" jsonschema:"enum=canvas,enum=gotext,enum=estimate,default=canvas"`
	Format string `yaml:"format" toml:"format" json:"format" jsonschema:"enum=pdf,enum=svg,enum=png,default=pdf"`
}

// Default 返回与 fit.DefaultOptions 一致的默认配置。
func Default() Config {
	d := fit.DefaultOptions()
	return Config{
		Fit: FitConfig{
			MinSize:                d.MinSize,
			MaxSize:                d.MaxSize,
			ObserveContainerResize: d.ObserveContainerResize,
			ObserveContentMutation: d.ObserveContentMutation,
			RefitOnFontLoad:        d.RefitOnFontLoad,
			DebounceMS:             int(d.Debounce / time.Millisecond),
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Render: RenderConfig{Shaper: "canvas", Format: "pdf"},
	}
}

// Load 读取配置文件，格式由扩展名决定。未出现的字段保留默认值，
// 未知字段视为错误。path 为空时返回默认配置。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := decode(path, data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("未知字段 %v", undecoded)
		}
		return nil
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	default:
		return fmt.Errorf("不支持的配置格式 %q（可选 .yaml/.yml/.toml/.json）", ext)
	}
}

// Validate 检查取值范围。
func (c Config) Validate() error {
	if err := c.FitOptions().Validate(); err != nil {
		return fmt.Errorf("%w: fit: %w", ErrInvalid, err)
	}
	switch c.Fit.Strategy {
	case "", "clone", "inplace":
	default:
		return fmt.Errorf("%w: fit.strategy %q", ErrInvalid, c.Fit.Strategy)
	}
	if c.Fit.InPlaceSlack < 0 {
		return fmt.Errorf("%w: fit.inPlaceSlack 不能为负数", ErrInvalid)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	switch c.Render.Shaper {
	case "", "canvas", "gotext", "estimate":
	default:
		return fmt.Errorf("%w: render.shaper %q", ErrInvalid, c.Render.Shaper)
	}
	switch c.Render.Format {
	case "", "pdf", "svg", "png":
	default:
		return fmt.Errorf("%w: render.format %q", ErrInvalid, c.Render.Format)
	}
	return nil
}

// FitOptions 返回配置对应的 fit.Options（不含 Signals 与回调）。
// strategy 为 clone 或留空时不设置 Strategy，由会话根据宿主能力选择。
func (c Config) FitOptions() fit.Options {
	o := fit.DefaultOptions()
	o.MinSize = c.Fit.MinSize
	o.MaxSize = c.Fit.MaxSize
	o.ObserveContainerResize = c.Fit.ObserveContainerResize
	o.ObserveContentMutation = c.Fit.ObserveContentMutation
	o.RefitOnFontLoad = c.Fit.RefitOnFontLoad
	o.Debounce = time.Duration(c.Fit.DebounceMS) * time.Millisecond
	if c.Fit.Strategy == "inplace" {
		o.Strategy = fit.InPlace{Slack: c.Fit.InPlaceSlack}
	}
	return o
}

// Options 以 fit.Option 形式返回 FitOptions，便于与其他选项组合。
func (c Config) Options() []fit.Option {
	return []fit.Option{fit.WithOptions(c.FitOptions())}
}

// Schema 返回配置文件的 JSON Schema。
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag:              "json",
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	s := r.Reflect(&Config{})
	s.Title = "fitbox configuration"
	return json.MarshalIndent(s, "", "  ")
}
