package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the working directory
const DefaultConfigFile = ".git-sniffer.yaml"

// EnvVar overrides the target environment from the configuration file
const EnvVar = "GIT_SNIFFER_TARGET_ENV"

// Git backends
const (
	BackendCLI   = "cli"
	BackendGoGit = "go-git"
)

// Config represents the application configuration
type Config struct {
	Env        string    `yaml:"env"`
	ScratchDir string    `yaml:"scratch_dir"`
	Git        GitConfig `yaml:"git"`
	Style      StyleTool `yaml:"style"`
	Lint       LintTool  `yaml:"lint"`
	Logging    LogConfig `yaml:"logging"`
}

// GitConfig selects how the staged snapshot is read
type GitConfig struct {
	Backend string `yaml:"backend"`
}

// StyleTool configures the PHP_CodeSniffer style checker
type StyleTool struct {
	Bin        string   `yaml:"bin"` // empty disables the tool
	Standard   string   `yaml:"standard"`
	Encoding   string   `yaml:"encoding"`
	Extensions []string `yaml:"extensions"`
	Ignore     []string `yaml:"ignore"`
}

// LintTool configures the ESLint linter
type LintTool struct {
	Bin        string   `yaml:"bin"` // empty disables the tool
	Config     string   `yaml:"config"`
	IgnorePath string   `yaml:"ignore_path"`
	Extensions []string `yaml:"extensions"`
}

// LogConfig contains settings for logging
type LogConfig struct {
	LogToFile   bool   `yaml:"log_to_file"`
	LogFilePath string `yaml:"log_file_path"`
	MaxSize     int    `yaml:"max_size"`    // maximum size in megabytes
	MaxBackups  int    `yaml:"max_backups"` // maximum number of old log files to retain
	MaxAge      int    `yaml:"max_age"`     // maximum number of days to retain old log files
	Compress    bool   `yaml:"compress"`
}

// LoadDefault returns a configuration with default values.
// Both tool binaries are empty, so a tool only runs once a file configures it.
func LoadDefault() *Config {
	return &Config{
		Env:        "local",
		ScratchDir: ".tmp_staging",
		Git: GitConfig{
			Backend: BackendCLI,
		},
		Style: StyleTool{
			Standard:   "PSR2",
			Encoding:   "utf-8",
			Extensions: []string{"php"},
		},
		Lint: LintTool{
			Config:     ".eslintrc.json",
			Extensions: []string{"js"},
		},
		Logging: LogConfig{
			LogToFile:   false,
			LogFilePath: "git-sniffer.log",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
			Compress:    true,
		},
	}
}

// Default returns a configuration with default values
func Default() *Config {
	return LoadDefault()
}

// Load reads configuration from a file on fsys and merges it with default values
func Load(fsys afero.Fs, configPath string) (*Config, error) {
	cfg := LoadDefault()

	data, err := afero.ReadFile(fsys, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fileCfg.Env != "" {
		cfg.Env = fileCfg.Env
	}
	if fileCfg.ScratchDir != "" {
		cfg.ScratchDir = fileCfg.ScratchDir
	}
	if fileCfg.Git.Backend != "" {
		cfg.Git.Backend = strings.ToLower(fileCfg.Git.Backend)
	}

	// Merge style tool configuration
	cfg.Style.Bin = fileCfg.Style.Bin
	if fileCfg.Style.Standard != "" {
		cfg.Style.Standard = fileCfg.Style.Standard
	}
	if fileCfg.Style.Encoding != "" {
		cfg.Style.Encoding = fileCfg.Style.Encoding
	}
	if len(fileCfg.Style.Extensions) > 0 {
		cfg.Style.Extensions = fileCfg.Style.Extensions
	}
	if len(fileCfg.Style.Ignore) > 0 {
		cfg.Style.Ignore = fileCfg.Style.Ignore
	}

	// Merge lint tool configuration
	cfg.Lint.Bin = fileCfg.Lint.Bin
	if fileCfg.Lint.Config != "" {
		cfg.Lint.Config = fileCfg.Lint.Config
	}
	cfg.Lint.IgnorePath = fileCfg.Lint.IgnorePath
	if len(fileCfg.Lint.Extensions) > 0 {
		cfg.Lint.Extensions = fileCfg.Lint.Extensions
	}

	// Merge logging configuration
	if fileCfg.Logging.LogToFile {
		cfg.Logging.LogToFile = fileCfg.Logging.LogToFile
	}
	if fileCfg.Logging.LogFilePath != "" {
		cfg.Logging.LogFilePath = fileCfg.Logging.LogFilePath
	}
	if fileCfg.Logging.MaxSize > 0 {
		cfg.Logging.MaxSize = fileCfg.Logging.MaxSize
	}
	if fileCfg.Logging.MaxBackups > 0 {
		cfg.Logging.MaxBackups = fileCfg.Logging.MaxBackups
	}
	if fileCfg.Logging.MaxAge > 0 {
		cfg.Logging.MaxAge = fileCfg.Logging.MaxAge
	}
	if fileCfg.Logging.Compress {
		cfg.Logging.Compress = fileCfg.Logging.Compress
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultFromEnv returns the default configuration with the target
// environment override applied, for runs without a configuration file
func DefaultFromEnv() *Config {
	cfg := LoadDefault()
	applyEnv(cfg)
	return cfg
}

// applyEnv lets GIT_SNIFFER_TARGET_ENV override the target environment
func applyEnv(cfg *Config) {
	if env := os.Getenv(EnvVar); env != "" {
		cfg.Env = env
	}
}

// Validate checks values that have a fixed set of choices
func (c *Config) Validate() error {
	switch c.Git.Backend {
	case BackendCLI, BackendGoGit:
	default:
		return fmt.Errorf("unsupported git backend: %s", c.Git.Backend)
	}
	if c.ScratchDir == "" {
		return fmt.Errorf("scratch_dir must not be empty")
	}
	return nil
}

// StyleEnabled reports whether a style tool binary is configured
func (c *Config) StyleEnabled() bool {
	return c.Style.Bin != ""
}

// LintEnabled reports whether a lint tool binary is configured
func (c *Config) LintEnabled() bool {
	return c.Lint.Bin != ""
}

// NormalizeExtensions strips leading dots and drops blanks, so ".php" and
// "php" configure the same extension
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Resolve returns path joined to dir unless it is already absolute
func Resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
