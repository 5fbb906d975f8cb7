package main

import "github.com/spf13/cobra"

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the parkgate version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("parkgate", version)
		},
	}
}
