package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/techverse/billdesk/internal/bill"
	"github.com/techverse/billdesk/internal/clock"
	"github.com/techverse/billdesk/internal/company"
	"github.com/techverse/billdesk/internal/config"
	"github.com/techverse/billdesk/internal/database"
	"github.com/techverse/billdesk/internal/events"
	"github.com/techverse/billdesk/internal/events/dispatch"
	"github.com/techverse/billdesk/internal/observability"
	"github.com/techverse/billdesk/internal/server"
	"go.uber.org/fx"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		clock.Module,
		database.Module,
		events.Module,
		dispatch.Module,
		company.Module,
		bill.Module,
		server.Module,
	)
	app.Run()
}
