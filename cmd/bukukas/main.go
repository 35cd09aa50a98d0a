package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bukukas/internal/cache"
	"github.com/smallbiznis/bukukas/internal/clock"
	"github.com/smallbiznis/bukukas/internal/config"
	"github.com/smallbiznis/bukukas/internal/invoice"
	"github.com/smallbiznis/bukukas/internal/ledger"
	"github.com/smallbiznis/bukukas/internal/migration"
	"github.com/smallbiznis/bukukas/internal/observability"
	"github.com/smallbiznis/bukukas/internal/payment"
	"github.com/smallbiznis/bukukas/internal/seed"
	"github.com/smallbiznis/bukukas/internal/server"
	"github.com/smallbiznis/bukukas/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		seed.Module,
		cache.Module,

		// Functional Domains
		invoice.Module,
		ledger.Module,
		payment.Module,

		server.Module,
		fx.Invoke(logStartup),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		panic(err)
	}
	return node
}

func logStartup(cfg config.Config, log *zap.Logger) {
	log.Info("bukukas starting",
		zap.String("env", cfg.Environment),
		zap.String("db_type", cfg.DBType),
		zap.Bool("callback_token_configured", cfg.Xendit.CallbackToken != ""),
		zap.String("internal_api_base_url", cfg.Xendit.InternalAPIBaseURL),
		zap.Bool("processed_cache", cfg.Redis.Addr != ""),
		zap.Duration("reconcile_timeout", cfg.Reconcile.Timeout),
		zap.Bool("reconcile_require_account", cfg.Reconcile.RequireAccount),
	)
}
