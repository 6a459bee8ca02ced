package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the callsift version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("callsift " + version)
		},
	}
}
