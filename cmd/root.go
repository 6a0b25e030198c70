package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "postit",
	Short: "A live post-it wall with anonymous and federated sign-in",
	Long: `postit serves a browser wall of short dated notes.
Visitors get an anonymous session on first load and may link it to a federated identity
without losing their notes. Configuration is read from the environment.`,
	SilenceUsage: true,
}
