package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	SaveDirectory string       `mapstructure:"save_directory"`
	Confirmations bool         `mapstructure:"confirmations"`
	Theme         ThemeConfig  `mapstructure:"theme"`
	Export        ExportConfig `mapstructure:"export"`
	Server        ServerConfig `mapstructure:"server"`
	Log           LogConfig    `mapstructure:"log"`
}

type ThemeConfig struct {
	TextColor        string `mapstructure:"text_color"`
	ButtonColor      string `mapstructure:"button_color"`
	ButtonBackground string `mapstructure:"button_background"`
}

type ExportConfig struct {
	Container string `mapstructure:"container"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// loadConfig reads the config file and WIDGETPAD_* env overrides. An
// explicit path must exist; the default location is optional.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	def := DefaultTheme()
	v.SetDefault("save_directory", "")
	v.SetDefault("confirmations", true)
	v.SetDefault("theme.text_color", def.TextColor)
	v.SetDefault("theme.button_color", def.ButtonColor)
	v.SetDefault("theme.button_background", def.ButtonBackground)
	v.SetDefault("export.container", DefaultExporter().Container)
	v.SetDefault("server.addr", "127.0.0.1:7420")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv("WIDGETPAD_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(expandHome(path))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "widgetpad"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WIDGETPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.SaveDirectory = expandHome(c.SaveDirectory)
	if c.SaveDirectory != "" && !filepath.IsAbs(c.SaveDirectory) {
		if abs, err := filepath.Abs(c.SaveDirectory); err == nil {
			c.SaveDirectory = abs
		}
	}
	c.Log.File = expandHome(c.Log.File)
	return &c, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ElementTheme returns the creation defaults, falling back to
// DefaultTheme for any color left empty.
func (c *Config) ElementTheme() Theme {
	t := DefaultTheme()
	if c.Theme.TextColor != "" {
		t.TextColor = c.Theme.TextColor
	}
	if c.Theme.ButtonColor != "" {
		t.ButtonColor = c.Theme.ButtonColor
	}
	if c.Theme.ButtonBackground != "" {
		t.ButtonBackground = c.Theme.ButtonBackground
	}
	return t
}

func (c *Config) Exporter() Exporter {
	x := DefaultExporter()
	if c.Export.Container != "" {
		x.Container = c.Export.Container
	}
	return x
}

// GetSavePath places filename under the save directory, if one is set.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	return filepath.Join(c.SaveDirectory, filename)
}
