package dashboard

import (
	"fitbook/internal/api/controllers"
	"fitbook/internal/services"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	services.NewDashboardService, controllers.NewDashboardController,
)
