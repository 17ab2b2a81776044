package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"vellum/pkg/css"
	"vellum/pkg/paint"
	"vellum/pkg/text"
)

// Config is the full vellum configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Fonts    FontsConfig    `mapstructure:"fonts" yaml:"fonts"`
	Paint    PaintConfig    `mapstructure:"paint" yaml:"paint"`
	Images   ImagesConfig   `mapstructure:"images" yaml:"images"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	// Color enables ANSI level colors in console output.
	Color bool `mapstructure:"color" yaml:"color"`
}

// ViewportConfig is the render surface size in pixels.
type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// FontsConfig controls the font library.
type FontsConfig struct {
	// Dirs are scanned for .ttf and .otf files. "~" is expanded.
	Dirs []string `mapstructure:"dirs" yaml:"dirs"`
	// Aliases map family names, such as CSS generic families, to
	// registered families. They extend the built-in aliases.
	Aliases map[string]string `mapstructure:"aliases" yaml:"aliases"`
	// GoFonts registers the embedded Go font family.
	GoFonts bool `mapstructure:"go_fonts" yaml:"go_fonts"`
}

// PaintConfig controls the paint emitter and rasterizer.
type PaintConfig struct {
	Mode            string   `mapstructure:"mode" yaml:"mode"`               // cursor | layout
	MultiLine       bool     `mapstructure:"multiline" yaml:"multiline"`
	Inheritance     string   `mapstructure:"inheritance" yaml:"inheritance"` // parent | ancestor
	DefaultFamilies []string `mapstructure:"default_families" yaml:"default_families"`
	DefaultFontSize float64  `mapstructure:"default_font_size" yaml:"default_font_size"`
	DefaultColor    string   `mapstructure:"default_color" yaml:"default_color"`
	Background      string   `mapstructure:"background" yaml:"background"`
}

// ImagesConfig controls the image cache.
type ImagesConfig struct {
	Prefetch            bool `mapstructure:"prefetch" yaml:"prefetch"`
	PrefetchConcurrency int  `mapstructure:"prefetch_concurrency" yaml:"prefetch_concurrency"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "vellum")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.color", true)

	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)

	v.SetDefault("fonts.dirs", []string{})
	v.SetDefault("fonts.aliases", map[string]string{})
	v.SetDefault("fonts.go_fonts", true)

	v.SetDefault("paint.mode", "cursor")
	v.SetDefault("paint.multiline", true)
	v.SetDefault("paint.inheritance", "parent")
	v.SetDefault("paint.default_families", []string{"sans-serif"})
	v.SetDefault("paint.default_font_size", 12.0)
	v.SetDefault("paint.default_color", "black")
	v.SetDefault("paint.background", "white")

	v.SetDefault("images.prefetch", true)
	v.SetDefault("images.prefetch_concurrency", 4)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults always unmarshal.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Load reads an optional config file and VELLUM_* environment variables
// into v, on top of the defaults.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("VELLUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expanding config path: %w", err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", expanded, err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals, normalizes and validates v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expandPaths() error {
	for i, dir := range c.Fonts.Dirs {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return fmt.Errorf("expanding font dir %s: %w", dir, err)
		}
		c.Fonts.Dirs[i] = expanded
	}
	if c.Logger.LogFile != "" {
		expanded, err := homedir.Expand(c.Logger.LogFile)
		if err != nil {
			return fmt.Errorf("expanding log file: %w", err)
		}
		c.Logger.LogFile = expanded
	}
	return nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	var errs []error
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if _, err := c.Paint.mode(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Paint.inheritance(); err != nil {
		errs = append(errs, err)
	}
	if c.Paint.DefaultFontSize <= 0 {
		errs = append(errs, fmt.Errorf("paint.default_font_size must be positive"))
	}
	if _, ok := css.ParseColor(c.Paint.DefaultColor); !ok {
		errs = append(errs, fmt.Errorf("paint.default_color %q is not a color", c.Paint.DefaultColor))
	}
	if _, ok := css.ParseColor(c.Paint.Background); !ok {
		errs = append(errs, fmt.Errorf("paint.background %q is not a color", c.Paint.Background))
	}
	if c.Images.PrefetchConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("images.prefetch_concurrency must be a positive integer"))
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format))
	}
	return errors.Join(errs...)
}

func (p PaintConfig) mode() (paint.Mode, error) {
	switch strings.ToLower(p.Mode) {
	case "cursor", "":
		return paint.ModeCursor, nil
	case "layout":
		return paint.ModeLayout, nil
	}
	return 0, fmt.Errorf("paint.mode must be cursor or layout, got %q", p.Mode)
}

func (p PaintConfig) inheritance() (paint.Inheritance, error) {
	switch strings.ToLower(p.Inheritance) {
	case "parent", "":
		return paint.InheritParent, nil
	case "ancestor", "nearest-ancestor":
		return paint.InheritNearestAncestor, nil
	}
	return 0, fmt.Errorf("paint.inheritance must be parent or ancestor, got %q", p.Inheritance)
}

// Options converts the paint section to emitter options.
func (p PaintConfig) Options() (paint.Options, error) {
	opts := paint.DefaultOptions()
	var err error
	if opts.Mode, err = p.mode(); err != nil {
		return opts, err
	}
	if opts.Inheritance, err = p.inheritance(); err != nil {
		return opts, err
	}
	opts.TextMode = text.SingleLine
	if p.MultiLine {
		opts.TextMode = text.MultiLine
	}
	if len(p.DefaultFamilies) > 0 {
		opts.DefaultFamilies = p.DefaultFamilies
	}
	if p.DefaultFontSize > 0 {
		opts.DefaultFontSize = p.DefaultFontSize
	}
	if c, ok := css.ParseColor(p.DefaultColor); ok {
		opts.DefaultColor = c
	}
	return opts, nil
}

// BackgroundColor returns the parsed background, white if unparsable.
func (p PaintConfig) BackgroundColor() css.Color {
	if c, ok := css.ParseColor(p.Background); ok {
		return c
	}
	return css.Color{R: 255, G: 255, B: 255, A: 255}
}
