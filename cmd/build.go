package cmd

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TheForsakenSpirit/node-cache-builder/application"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	buildOutput         string
	buildPackageManager string
	buildJSONReport     string
	buildDryRun         bool
	buildKeepWorkspace  bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the merged manifest and the cache archive",
	Long: `Scan the configured repositories, merge their dependency
declarations, install the selected versions, and pack the result
into a cache archive.

This is the main command intended to be used in CI.
It reads the configuration file, collects every package.json,
selects the highest declared version per package, runs a single
install over the merged manifest, and writes a compressed tarball
containing node_modules, the lockfile, and a build manifest.`,
	RunE: runBuild,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	buildCmd.Flags().StringVarP(
		&buildOutput, "output", "o", "",
		"Path of the cache archive to write (default: cache.output from config)",
	)
	buildCmd.Flags().StringVar(
		&buildPackageManager, "package-manager", "",
		"Package manager to install with (npm, yarn, pnpm)",
	)
	buildCmd.Flags().StringVar(
		&buildJSONReport, "json", "",
		"Write the merge report as JSON to this path",
	)
	buildCmd.Flags().BoolVar(
		&buildDryRun, "dry-run", false,
		"Scan and report without installing or archiving",
	)
	buildCmd.Flags().BoolVar(
		&buildKeepWorkspace, "keep-workspace", false,
		"Keep the staging directory after archiving",
	)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info("Starting cache build...")

	return withService(func(svc *application.BuildService) error {
		return svc.Run(ctx, cfg, application.BuildOptions{
			DryRun:         buildDryRun,
			Verbose:        verbose,
			Output:         buildOutput,
			PackageManager: buildPackageManager,
			JSONReport:     buildJSONReport,
			KeepWorkspace:  buildKeepWorkspace,
		})
	})
}
