package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/togetter/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts app.HostOptions

	flagSet := pflag.NewFlagSet("togetter-host", pflag.ContinueOnError)
	flagSet.StringVar(&opts.ConfigPath, "config", "", "override config path (default ~/.config/togetter/config.toml)")
	flagSet.StringVarP(&opts.Listen, "listen", "l", "", "listen address (optional)")
	flagSet.StringVar(&opts.Source, "source", "", "list source: file or api (optional)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "togetter-host: %v\n", err)
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(os.Stderr, "usage: togetter-host [flags]")
		flagSet.PrintDefaults()
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunHost(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "togetter-host: %v\n", err)
		return 1
	}
	return 0
}
