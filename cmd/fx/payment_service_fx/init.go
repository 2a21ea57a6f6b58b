package payment_service_fx

import (
	"fitbook/internal/api/controllers"
	"fitbook/internal/services"
	"fitbook/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(
	providePaymentGateway, controllers.NewPaymentController,
)

func providePaymentGateway(cfg *config.Config, log *zap.Logger) (services.PaymentGateway, error) {
	return services.NewStripeGateway(cfg.Stripe, log)
}
