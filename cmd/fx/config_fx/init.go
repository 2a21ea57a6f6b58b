package config_fx

import (
	"fitbook/internal/services"
	"fitbook/pkg/config"
	"fitbook/pkg/logger"
	"fitbook/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(
	config.Load,
	provideLogger,
	services.NewMarketplaceConfig,
	provideSessionTokens,
)

// provideLogger also installs the logger globally for the response helpers.
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

func provideSessionTokens(cfg *config.Config) (*utils.SessionTokens, error) {
	return utils.NewSessionTokens(cfg.Session.Secret, cfg.Session.TTL)
}
