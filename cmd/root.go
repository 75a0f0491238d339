package cmd

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TheForsakenSpirit/node-cache-builder/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	// Global flags
	configPath string
	verbose    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "node-cache-builder",
	Short: "Dependency cache builder for Node.js repositories",
	Long: `A CLI tool that aggregates package.json dependencies across multiple
repositories, resolves version conflicts, and builds a shared install cache.

This tool helps speed up CI pipelines for teams with many Node.js
repositories by:
- Collecting dependency declarations from every configured repository
- Selecting the highest declared version for each package
- Installing the merged manifest once with npm, yarn, or pnpm
- Packing node_modules and the lockfile into a reusable cache archive
- Reporting repositories pinned behind the selected versions`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadConfig resolves the configuration file, either from the --config flag
// or by searching the usual locations, and loads it.
func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create node-cache-builder.yaml",
				err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
