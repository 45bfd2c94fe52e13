package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "ozo-agent",
		Short:         "Background agent for OZO attendance clock-in and clock-out",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running the bare binary starts the agent.
		RunE: serve.RunE,
	}

	root.AddCommand(
		serve,
		newHashSecretCmd(),
	)

	return root
}
