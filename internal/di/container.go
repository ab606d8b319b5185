// Package di provides dependency injection configuration for the PromptVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/promptvaultapp/promptvault-server/internal/backup"
	"github.com/promptvaultapp/promptvault-server/internal/config"
	"github.com/promptvaultapp/promptvault-server/internal/di/providers"
	"github.com/promptvaultapp/promptvault-server/internal/logger"
	"github.com/promptvaultapp/promptvault-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvidePromptService)
	do.Provide(injector, providers.ProvideBackupService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*service.PromptService](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
