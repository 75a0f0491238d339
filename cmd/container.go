package cmd

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/TheForsakenSpirit/node-cache-builder/application"
	"github.com/TheForsakenSpirit/node-cache-builder/domain"
	"github.com/TheForsakenSpirit/node-cache-builder/infrastructure/archive"
	"github.com/TheForsakenSpirit/node-cache-builder/infrastructure/installer"
	"github.com/TheForsakenSpirit/node-cache-builder/infrastructure/report"
	"github.com/TheForsakenSpirit/node-cache-builder/infrastructure/scanner"
)

// registerProviders registers all providers with the DIG container.
func registerProviders(container *dig.Container) error {
	// Register infrastructure constructors
	if err := container.Provide(scanner.New); err != nil {
		return err
	}
	if err := container.Provide(installer.New); err != nil {
		return err
	}
	if err := container.Provide(archive.New); err != nil {
		return err
	}
	if err := container.Provide(report.New); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *scanner.Scanner) domain.Scanner {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *installer.Installer) domain.Installer {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *archive.Archiver) domain.Archiver {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *report.Renderer) domain.Reporter {
		return impl
	}); err != nil {
		return err
	}

	// Register the application service
	if err := container.Provide(application.NewBuildService); err != nil {
		return err
	}

	return nil
}

// withService assembles the DIG container and invokes fn with the
// resolved build service.
func withService(fn func(*application.BuildService) error) error {
	container := dig.New()
	if err := registerProviders(container); err != nil {
		return fmt.Errorf("failed to register providers: %w", err)
	}
	return container.Invoke(fn)
}
