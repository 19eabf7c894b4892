package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/slatehq/slate/internal/manifest"
)

// Config represents the slate configuration
type Config struct {
	ProjectName string          `mapstructure:"project_name"`
	Source      SourceConfig    `mapstructure:"source"`
	Tools       ToolsConfig     `mapstructure:"tools"`
	Lint        LintConfig      `mapstructure:"lint"`
	Format      FormatConfig    `mapstructure:"format"`
	Typecheck   TypecheckConfig `mapstructure:"typecheck"`
}

// SourceConfig locates the Python source tree
type SourceConfig struct {
	Roots       []string `mapstructure:"roots"`
	EntryModule string   `mapstructure:"entry_module"`
}

// ToolsConfig names the external tool binaries
type ToolsConfig struct {
	UV       string `mapstructure:"uv"`
	Ruff     string `mapstructure:"ruff"`
	Ty       string `mapstructure:"ty"`
	Fallback string `mapstructure:"fallback"` // one-off runner; empty disables
}

// LintConfig holds linter rule selection
type LintConfig struct {
	Select []string `mapstructure:"select"`
	Ignore []string `mapstructure:"ignore"`
}

// FormatConfig holds formatter style settings
type FormatConfig struct {
	LineLength int `mapstructure:"line_length"`
}

// TypecheckConfig holds type checker settings
type TypecheckConfig struct {
	Args []string `mapstructure:"args"`
}

// Load loads the configuration from slate.yml or slate.yaml, looking
// in the current directory first and then at the project root, so the
// root config applies from anywhere inside the project.
func Load(root string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("source.roots", []string{"src"})
	v.SetDefault("tools.uv", "")
	v.SetDefault("tools.ruff", "")
	v.SetDefault("tools.ty", "")
	v.SetDefault("tools.fallback", "uvx")

	// Set config name and paths
	v.SetConfigName("slate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if root != "" {
		v.AddConfigPath(root)
	}

	// Enable environment variable support
	v.SetEnvPrefix("SLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LintArgs renders the configured rule selection as linter arguments.
func (c *Config) LintArgs() []string {
	var args []string
	if len(c.Lint.Select) > 0 {
		args = append(args, "--select", strings.Join(c.Lint.Select, ","))
	}
	if len(c.Lint.Ignore) > 0 {
		args = append(args, "--ignore", strings.Join(c.Lint.Ignore, ","))
	}
	return args
}

// FormatArgs renders the configured style as formatter arguments.
func (c *Config) FormatArgs() []string {
	if c.Format.LineLength > 0 {
		return []string{"--line-length", fmt.Sprintf("%d", c.Format.LineLength)}
	}
	return nil
}

// InProject checks if the current directory is inside a Python project
func InProject() bool {
	_, err := GetProjectRoot()
	return err == nil
}

// GetProjectRoot finds the project root by walking up to the manifest
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return manifest.FindRoot(dir)
}

// EntryModule resolves the module to execute: explicit configuration
// first, then the manifest's project name.
func (c *Config) EntryModule(root string) (string, error) {
	if c.Source.EntryModule != "" {
		return c.Source.EntryModule, nil
	}
	m, err := manifest.LoadDir(root)
	if err != nil {
		return "", err
	}
	return m.ModuleName(), nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	for _, root := range cfg.Source.Roots {
		if filepath.IsAbs(root) {
			return fmt.Errorf("source.roots entries must be relative, got: %s", root)
		}
		if strings.HasPrefix(root, "..") {
			return fmt.Errorf("source.roots entries must stay inside the project, got: %s", root)
		}
	}
	if cfg.Format.LineLength < 0 {
		return fmt.Errorf("format.line_length must be positive, got: %d", cfg.Format.LineLength)
	}
	return nil
}
