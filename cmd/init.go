package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TheForsakenSpirit/node-cache-builder/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var initForce bool

//nolint:gochecknoglobals // required by cobra CLI pattern
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Interactively create a node-cache-builder.yaml configuration file.

Prompts for the repository paths to aggregate, one per line, and
writes a configuration with defaults for everything else.`,
	RunE: runInit,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file without asking")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	target := configPath
	if target == "" {
		target = "node-cache-builder.yaml"
	}

	if _, err := os.Stat(target); err == nil && !initForce {
		if !confirmOverwrite(os.Stdin, os.Stdout, target) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("📁 Creating a new configuration...")
	fmt.Println()

	cfg, err := promptConfig(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	if saveErr := config.Save(cfg, target); saveErr != nil {
		return fmt.Errorf("failed to save config: %w", saveErr)
	}

	logger.Infof("Configuration written to %s", target)
	fmt.Printf("✅ Wrote %s with %d repositories\n", target, len(cfg.Repositories))
	return nil
}

// confirmOverwrite asks whether an existing config file should be replaced.
// Only an explicit yes counts.
func confirmOverwrite(in io.Reader, out io.Writer, path string) bool {
	fmt.Fprintf(out, "Config file %s already exists. Overwrite? [y/N] ", path)

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// promptConfig reads repository paths from in, one per line, until an empty
// line, and assembles a configuration with default cache settings.
func promptConfig(in io.Reader, out io.Writer) (*config.Config, error) {
	fmt.Fprintln(out, "Enter repository paths or clone URLs, one per line.")
	fmt.Fprintln(out, "Finish with an empty line.")

	var repos []config.RepositoryConfig
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		repos = append(repos, config.RepositoryConfig{Path: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(repos) == 0 {
		return nil, errors.New("at least one repository is required")
	}

	return &config.Config{
		Repositories: repos,
		Cache:        config.CacheConfig{Output: config.DefaultOutput},
	}, nil
}
