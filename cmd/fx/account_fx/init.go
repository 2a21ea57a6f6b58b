package account_fx

import (
	"fitbook/internal/api/controllers"
	"fitbook/internal/services"
	"fitbook/pkg/config"
	"fitbook/pkg/middleware"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	provideIdentity,
	services.NewAccountService,
	provideActorResolver,
	controllers.NewAccountController,
)

func provideIdentity(cfg *config.Config) services.IdentityProvider {
	return services.NewGoogleIdentity(cfg.Google)
}

func provideActorResolver(accounts services.AccountServiceInterface) middleware.ActorResolver {
	return accounts
}
