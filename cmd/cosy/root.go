package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CLI output colors
var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow)
)

func newRootCmd() *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:   "cosy",
		Short: "Run and inspect cosy applications",
		Long: `cosy loads layered configuration (app.<ext>, then <APP_ENV>.<ext>),
registers and boots providers, and serves the application on app.port.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newServeCmd())
	root.AddCommand(newEnvCmd())
	root.AddCommand(newVersionCmd())
	return root
}
