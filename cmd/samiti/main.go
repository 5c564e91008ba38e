package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/config"
	obslogger "github.com/commonshq/samiti/internal/observability/logger"
	obsmetrics "github.com/commonshq/samiti/internal/observability/metrics"
	"github.com/commonshq/samiti/internal/server"
	"github.com/commonshq/samiti/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		obslogger.Module,
		obsmetrics.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
