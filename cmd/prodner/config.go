package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/prodner"
	"github.com/fwojciec/prodner/gemini"
	prodhttp "github.com/fwojciec/prodner/http"
	"gopkg.in/yaml.v3"
)

// Config holds the values a YAML file may set. Unset keys keep their
// built-in defaults.
type Config struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	UserAgent   string        `yaml:"user_agent"`
	Retries     int           `yaml:"retries"`
	RPS         float64       `yaml:"rps"`
	HTMLDir     string        `yaml:"html_dir"`
	TextDir     string        `yaml:"text_dir"`
	DB          string        `yaml:"db"`
	Model       string        `yaml:"model"`
	Gazetteer   string        `yaml:"gazetteer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     prodhttp.DefaultFetchTimeout,
		Concurrency: runtime.NumCPU(),
		UserAgent:   prodhttp.DefaultUserAgent,
		Retries:     3,
		RPS:         1,
		Model:       gemini.DefaultModel,
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns
// the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, prodner.Errorf(prodner.EINVALID, "read config %s: %v", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, prodner.Errorf(prodner.EINVALID, "parse config %s: %v", path, err)
	}
	if cfg.Concurrency < 1 {
		return cfg, prodner.Errorf(prodner.EINVALID, "config %s: concurrency must be at least 1", path)
	}
	if cfg.Retries < 0 {
		return cfg, prodner.Errorf(prodner.EINVALID, "config %s: retries must not be negative", path)
	}
	return cfg, nil
}

// Vars exposes the configuration as kong interpolation variables.
func (c Config) Vars() kong.Vars {
	return kong.Vars{
		"timeout":     c.Timeout.String(),
		"concurrency": strconv.Itoa(c.Concurrency),
		"user_agent":  c.UserAgent,
		"retries":     strconv.Itoa(c.Retries),
		"rps":         strconv.FormatFloat(c.RPS, 'f', -1, 64),
		"html_dir":    c.HTMLDir,
		"text_dir":    c.TextDir,
		"db":          c.DB,
		"model":       c.Model,
		"gazetteer":   c.Gazetteer,
	}
}

// ConfigPath finds the --config value in args before kong parses them,
// falling back to PRODNER_CONFIG.
func ConfigPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("PRODNER_CONFIG")
}
