package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallpress/folio/internal/migration"
	"github.com/smallpress/folio/internal/observability"
	"github.com/smallpress/folio/internal/server"
	"github.com/smallpress/folio/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		server.Module,
		migration.Module,
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
