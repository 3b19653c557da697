package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL   string `yaml:"base_url"`
	Referer   string `yaml:"referer"`
	UserAgent string `yaml:"user_agent"`

	Output          string   `yaml:"output"`
	PageTimeoutSec  int      `yaml:"page_timeout_sec"`
	ImageTimeoutSec int      `yaml:"image_timeout_sec"`
	AllowExt        []string `yaml:"allow_ext"`

	CFBypass bool `yaml:"cf_bypass"`
	CBZ      bool `yaml:"cbz"`
	Debug    bool `yaml:"debug"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Output       string
	UserAgent    string
	CFBypass     bool
	CBZ          bool
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://www.177picyy.com",
		Referer:         "https://www.177picyy.com/",
		UserAgent:       "",
		Output:          "downloaded_comics",
		PageTimeoutSec:  10,
		ImageTimeoutSec: 30,
		AllowExt:        []string{"jpg", "jpeg", "png", "gif"},
		CFBypass:        false,
		CBZ:             false,
		Debug:           false,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadMerged returns the effective config: the config file if one
// exists, with CLI options layered on top. A missing file is not an
// error; defaults apply.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	path := ConfigPath()
	if !fileExists(path) {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `picdl config init` to create an actual config\n", nil
	}

	cfg, err := loadYAML(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, path, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CFBypass {
		c.CFBypass = true
	}
	if o.CBZ {
		c.CBZ = true
	}
	if o.Debug {
		c.Debug = true
	}
}

func normalizeDefaults(c *Config) {
	d := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Referer == "" {
		c.Referer = d.Referer
	}
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.PageTimeoutSec <= 0 {
		c.PageTimeoutSec = d.PageTimeoutSec
	}
	if c.ImageTimeoutSec <= 0 {
		c.ImageTimeoutSec = d.ImageTimeoutSec
	}
	if len(c.AllowExt) == 0 {
		c.AllowExt = d.AllowExt
	}
}

// Domain is the substring an image URL must contain to count as
// belonging to the target site.
func (c *Config) Domain() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(c.BaseURL, "www.")
	}

	return strings.TrimPrefix(u.Host, "www.")
}

func (c *Config) Print() {
	fmt.Printf(" -base_url: %s\n", c.BaseURL)
	fmt.Printf(" -referer: %s\n", c.Referer)
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -page_timeout_sec: %d\n", c.PageTimeoutSec)
	fmt.Printf(" -image_timeout_sec: %d\n", c.ImageTimeoutSec)
	if len(c.AllowExt) > 0 {
		fmt.Printf(" -allow_ext: %s\n", strings.Join(c.AllowExt, ", "))
	}
	if c.CFBypass {
		fmt.Printf(" -cf_bypass: %t\n", c.CFBypass)
	}
	if c.CBZ {
		fmt.Printf(" -cbz: %t\n", c.CBZ)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
