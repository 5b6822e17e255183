package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/curves/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	profileFlags
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the interactive comparison chart" }
func (*serveCmd) Usage() string {
	return `curvecmp serve [-addr <host:port>] [compare flags]

  Serves an interactive chart of the curves. Every interaction fetches fresh
  data and recomputes the curves from scratch: series can be selected,
  the principal, the scale and the inflation adjustment changed.

  The flags set the initial state of the chart, they override the profile
  selected by the global -profile flag.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	c.profileFlags.SetFlags(f)
	f.StringVar(&c.addr, "addr", "localhost:8080", "Address to listen on.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := LoadProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load profile: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.apply(p, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid options: %v\n", err)
		return subcommands.ExitUsageError
	}
	pipeline, err := p.Pipeline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	state, err := p.State()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server.Server{Pipeline: pipeline, Defaults: state, Benchmarks: p.Benchmarks}
	fmt.Fprintf(os.Stderr, "Serving the comparison chart on http://%s/\n", c.addr)
	if err := srv.ListenAndServe(ctx, c.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
