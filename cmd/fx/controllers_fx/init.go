package controllers_fx

import (
	"fitbook/internal/api/controllers"
	"fitbook/internal/repositories"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(provideHealthController))

func provideHealthController(store repositories.Store) *controllers.HealthController {
	return controllers.NewHealthController(store)
}
