package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

type profileCmd struct {
	profileFlags
}

func (*profileCmd) Name() string     { return "profile" }
func (*profileCmd) Synopsis() string { return "print the effective comparison profile" }
func (*profileCmd) Usage() string {
	return `curvecmp profile [compare flags]

  Prints the profile compare and serve would use: the -profile file, or the
  default profile, with environment variables and flags applied.
  The EODHD API key is masked.
`
}

func (c *profileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := LoadProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load profile: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.apply(p, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid options: %v\n", err)
		return subcommands.ExitUsageError
	}
	if p.EODHD.APIKey != "" {
		p.EODHD.APIKey = "********"
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(string(out))
	return subcommands.ExitSuccess
}
