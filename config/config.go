package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultOutput is where the cache archive lands when the config does not
// say otherwise.
const DefaultOutput = "node-cache.tgz"

const (
	configFileMode = 0o644
	configDirMode  = 0o755
)

// packageManagers lists the supported package manager identifiers.
var packageManagers = []string{"npm", "yarn", "pnpm"}

// Config is the top-level configuration for node-cache-builder.
type Config struct {
	Repositories []RepositoryConfig `yaml:"repositories"`
	Cache        CacheConfig        `yaml:"cache"`
	Report       ReportConfig       `yaml:"report"`
}

// RepositoryConfig describes a single repository input. Path is a local
// directory or a remote Git URL; listing order decides merge precedence.
type RepositoryConfig struct {
	Path string `yaml:"path"`
	Name string `yaml:"name,omitempty"`
}

// CacheConfig controls the install and archive step.
type CacheConfig struct {
	Output         string `yaml:"output,omitempty"`          // archive path; defaults to DefaultOutput
	PackageManager string `yaml:"package_manager,omitempty"` // "npm", "yarn" or "pnpm"; empty means auto-detect
	Workspace      string `yaml:"workspace,omitempty"`       // staging directory; empty means a temp dir
}

// ReportConfig controls report outputs.
type ReportConfig struct {
	JSON string `yaml:"json,omitempty"` // write the JSON report here when set
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment variable
// references in every path-valued field and applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	for i := range cfg.Repositories {
		cfg.Repositories[i].Path = expandEnv(cfg.Repositories[i].Path)
	}
	cfg.Cache.Output = expandEnv(cfg.Cache.Output)
	cfg.Cache.Workspace = expandEnv(cfg.Cache.Workspace)
	cfg.Report.JSON = expandEnv(cfg.Report.JSON)

	if cfg.Cache.Output == "" {
		cfg.Cache.Output = DefaultOutput
	}

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// Save writes the configuration to path in YAML form, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if mkErr := os.MkdirAll(dir, configDirMode); mkErr != nil {
			return fmt.Errorf("failed to create config directory %q: %w", dir, mkErr)
		}
	}

	if writeErr := os.WriteFile(path, data, configFileMode); writeErr != nil {
		return fmt.Errorf("failed to write config file %q: %w", path, writeErr)
	}
	return nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".node-cache-builder.yaml",
		".node-cache-builder.yml",
		"node-cache-builder.yaml",
		"node-cache-builder.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// expandEnv expands ${VAR} references using the process environment.
// Unset variables expand to the empty string with a warning.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}

	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// validate checks the whole configuration and reports every problem at once,
// so one round trip is enough to fix a broken file.
func validate(cfg *Config) error {
	var problems []error

	if len(cfg.Repositories) == 0 {
		problems = append(problems, errors.New("at least one repository must be configured"))
	}

	seen := make(map[string]int)
	for i, repo := range cfg.Repositories {
		if repo.Path == "" {
			problems = append(problems, fmt.Errorf("repositories[%d].path is required", i))
			continue
		}
		if first, dup := seen[repo.Path]; dup {
			problems = append(problems, fmt.Errorf(
				"repositories[%d].path %q duplicates repositories[%d]",
				i, repo.Path, first,
			))
			continue
		}
		seen[repo.Path] = i
	}

	if pm := cfg.Cache.PackageManager; pm != "" && !slices.Contains(packageManagers, pm) {
		problems = append(problems, fmt.Errorf(
			"cache.package_manager %q is not supported (use one of: %s)",
			pm, strings.Join(packageManagers, ", "),
		))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
}
