package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/govnotify/letterpipe/internal/alerts"
	"github.com/govnotify/letterpipe/internal/archive"
	"github.com/govnotify/letterpipe/internal/calendar"
	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/collate"
	"github.com/govnotify/letterpipe/internal/config"
	"github.com/govnotify/letterpipe/internal/locks"
	"github.com/govnotify/letterpipe/internal/migration"
	"github.com/govnotify/letterpipe/internal/notification"
	"github.com/govnotify/letterpipe/internal/observability"
	"github.com/govnotify/letterpipe/internal/provider"
	"github.com/govnotify/letterpipe/internal/reconcile"
	"github.com/govnotify/letterpipe/internal/secrets"
	"github.com/govnotify/letterpipe/internal/server"
	"github.com/govnotify/letterpipe/internal/storage"
	"github.com/govnotify/letterpipe/internal/tasks"
	"github.com/govnotify/letterpipe/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		// Shared infrastructure
		storage.Module,
		secrets.Module,
		locks.Module,
		tasks.Module,
		alerts.Module,

		// Letter pipeline domain
		notification.Module,
		calendar.Module,
		collate.Module,
		provider.Module,
		reconcile.Module,
		archive.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
