package events_fx

import (
	"context"

	"fitbook/internal/services"
	"fitbook/pkg/config"
	"fitbook/pkg/mq"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(providePublisher)

func providePublisher(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (services.EventPublisher, error) {
	var pub mq.Publisher
	if cfg.RabbitMQURL == "" {
		pub = mq.NewLogPublisher(log)
	} else {
		rp, err := mq.NewRabbitPublisher(cfg.RabbitMQURL, mq.DefaultExchange, log)
		if err != nil {
			return nil, err
		}
		pub = rp
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return pub.Close() },
	})
	return pub, nil
}
