package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"fitbook/cmd/fx/account_fx"
	"fitbook/cmd/fx/booking_fx"
	"fitbook/cmd/fx/business_fx"
	"fitbook/cmd/fx/config_fx"
	"fitbook/cmd/fx/controllers_fx"
	"fitbook/cmd/fx/dashboard"
	"fitbook/cmd/fx/db_fx"
	"fitbook/cmd/fx/events_fx"
	"fitbook/cmd/fx/mail_fx"
	"fitbook/cmd/fx/memcache_fx"
	"fitbook/cmd/fx/payment_service_fx"
	"fitbook/cmd/fx/session_fx"
	"fitbook/cmd/fx/trainer_fx"
	"fitbook/internal/api"
	"fitbook/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func serveOptions() fx.Option {
	return fx.Options(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		events_fx.Module,
		mail_fx.Module,
		payment_service_fx.Module,
		account_fx.Module,
		business_fx.Module,
		session_fx.Module,
		booking_fx.Module,
		trainer_fx.Module,
		dashboard.Module,
		controllers_fx.Module,

		fx.Provide(api.NewRouter),
		fx.Invoke(StartServer),
	)
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
