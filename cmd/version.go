package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build information of postit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), appVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func appVersion() string {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	return fmt.Sprintf(tmpl, buildVersion, buildDate, buildCommit)
}
