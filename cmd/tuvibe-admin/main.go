package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Serve the admin console over HTTP."`
	Login   loginCmd   `cmd:"" help:"Store a bearer token for later commands."`
	Logout  logoutCmd  `cmd:"" help:"Forget the stored session."`
	Whoami  whoamiCmd  `cmd:"" help:"Show the stored session."`
	Stats   statsCmd   `cmd:"" help:"Print dashboard statistics."`
	Market  marketCmd  `cmd:"" help:"Manage marketplace items."`
	Reports reportsCmd `cmd:"" help:"Moderate user reports."`
	Stories storiesCmd `cmd:"" help:"Moderate stories."`
	Music   musicCmd   `cmd:"" help:"Manage story background music."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	parser := kong.Parse(&app,
		kong.Name("tuvibe-admin"),
		kong.Description("Administration console for the TuVibe backend."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&app.Globals, newTerminalEnv()),
	)
	err := parser.Run()
	parser.FatalIfErrorf(err)
}
