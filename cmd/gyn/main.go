package main

import (
	"context"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"github.com/growyourneed/platform/internal/config"
	"github.com/growyourneed/platform/internal/hooks"
	"github.com/growyourneed/platform/internal/logging"
	"github.com/growyourneed/platform/internal/payments"
	"github.com/growyourneed/platform/internal/routes"
	"github.com/growyourneed/platform/internal/secrets"
	"github.com/growyourneed/platform/internal/worker"

	// Register the platform collection migrations
	_ "github.com/growyourneed/platform/internal/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	logger.Info().
		Str("version", cfg.Version).
		Str("env", cfg.Env).
		Bool("payments", cfg.Payments.Enabled).
		Msg("starting Grow Your Need")

	app := pocketbase.New()

	gateway := payments.New(payments.Config{
		Enabled:   cfg.Payments.Enabled,
		SecretKey: cfg.Payments.StripeSecretKey,
	})
	if !gateway.Enabled() {
		logger.Info().Msg("payments disabled")
	}

	box, err := secrets.New(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid GYN_ENCRYPTION_KEY")
	}
	if box.Dev() {
		logger.Warn().Msg("GYN_ENCRYPTION_KEY not set, integration credentials use the development key")
	}

	// Apply SMTP settings from the environment once the app is bootstrapped
	app.OnBootstrap().BindFunc(func(e *core.BootstrapEvent) error {
		if err := e.Next(); err != nil {
			return err
		}
		if !cfg.SMTP.Enabled() {
			return nil
		}
		if err := applySMTP(e.App, cfg.SMTP); err != nil {
			logger.Error().Err(err).Msg("failed to apply SMTP settings")
			return nil
		}
		logger.Info().Str("host", cfg.SMTP.Host).Msg("SMTP settings applied")
		return nil
	})

	// Register custom routes
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		routes.Register(se, routes.Deps{Payments: gateway, Secrets: box, Logger: logger})
		return se.Next()
	})

	// Register event hooks
	hooks.Register(app)

	// The Asynq worker needs Redis; without REDIS_URL the platform runs
	// without background snapshots.
	if cfg.RedisAddr != "" {
		w := worker.New(app, worker.Options{
			RedisAddr: cfg.RedisAddr,
			Schedule:  cfg.SnapshotSchedule,
			Logger:    logger.With().Str("component", "worker").Logger(),
		})

		app.OnServe().BindFunc(func(se *core.ServeEvent) error {
			if err := w.Start(); err != nil {
				return err
			}
			if _, err := w.EnqueueSchemaReconcile(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("failed to enqueue schema reconcile")
			}
			return se.Next()
		})

		// Graceful shutdown: stop worker when PocketBase terminates
		app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
			w.Shutdown()
			return e.Next()
		})
	} else {
		logger.Info().Msg("REDIS_URL not set, worker disabled")
	}

	if err := app.Start(); err != nil {
		logger.Error().Err(err).Msg("pocketbase exited")
		os.Exit(1)
	}
}

// applySMTP copies the SMTP environment settings into the app settings.
func applySMTP(app core.App, s config.SMTP) error {
	settings := app.Settings()
	settings.SMTP.Enabled = true
	settings.SMTP.Host = s.Host
	settings.SMTP.Port = s.Port
	settings.SMTP.Username = s.Username
	settings.SMTP.Password = s.Password
	settings.SMTP.TLS = s.TLS
	if s.SenderAddress != "" {
		settings.Meta.SenderAddress = s.SenderAddress
	}
	if s.SenderName != "" {
		settings.Meta.SenderName = s.SenderName
	}
	return app.Save(settings)
}
