// Package cli implements the brevo-mcp command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles every subcommand. version is reported by --version and
// advertised to MCP clients.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "brevo-mcp",
		Short: "Model Context Protocol server for the Brevo API",
		Long: "brevo-mcp exposes Brevo email, SMS, contact and CRM operations as MCP tools " +
			"over stdio or streamable HTTP.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running without a subcommand serves, which is what MCP hosts expect.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, version)
		},
	}
	root.SetVersionTemplate("brevo-mcp version {{.Version}}\n")
	root.PersistentFlags().String("config", "", "Path to config file (default: MCP_CONFIG_PATH or ~/.brevo-mcp/config.yaml)")
	root.PersistentFlags().String("log-level", "", "Override the configured log level")

	root.AddCommand(NewServeCmd(version))
	root.AddCommand(NewToolsCmd())
	root.AddCommand(NewCallCmd())
	root.AddCommand(NewDashboardsCmd())
	return root
}
