package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheForsakenSpirit/node-cache-builder/application"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var scanJSONReport string

//nolint:gochecknoglobals // required by cobra CLI pattern
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan repositories and report the merged manifest",
	Long: `Scan the configured repositories for package.json files and report the
merged dependency manifest without installing anything.

Useful to preview which versions a build would select and which
repositories are pinned behind them.`,
	RunE: runScan,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	scanCmd.Flags().StringVar(
		&scanJSONReport, "json", "",
		"Write the merge report as JSON to this path",
	)
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("🔍 Scanning repositories for package.json dependencies...")
	fmt.Println()

	return withService(func(svc *application.BuildService) error {
		return svc.Scan(ctx, cfg, application.ScanOptions{
			Verbose:    verbose,
			JSONReport: scanJSONReport,
		})
	})
}
