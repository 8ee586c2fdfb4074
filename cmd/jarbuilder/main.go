package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/jarbuilder/cmd/jarbuilder/commands"
	"git.home.luguber.info/inful/jarbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/jarbuilder/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("jarbuilder"),
		kong.Description("Compile, bundle, lint and publish a JVM library from a single descriptor."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&commands.Global{}),
	)

	if err := parser.Run(); err != nil {
		cancel()
		errors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
	}
	os.Exit(0)
}
