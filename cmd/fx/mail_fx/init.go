package mail_fx

import (
	"context"

	"fitbook/internal/services"
	"fitbook/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(provideNotifier)

func provideNotifier(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) services.Notifier {
	var next services.Notifier
	if cfg.Mail.APIKey == "" {
		log.Warn("NOTIFY_API_KEY not set, notifications will only be logged")
		next = services.NewLogNotifier(log)
	} else {
		next = services.NewSMTPNotifier(cfg.Mail, cfg.Mail.FromName)
	}

	d := services.NewDispatcher(next, log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return d.Close(ctx) },
	})
	return d
}
