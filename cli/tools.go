package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/slighter12/brevo-mcp-go/tools"
)

// NewToolsCmd creates the "tools" command, which lists the tool catalog
// without contacting Brevo.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools this server exposes",
		Args:  cobra.NoArgs,
		RunE:  runTools,
	}
	cmd.Flags().Bool("json", false, "Print tool definitions as JSON")
	cmd.Flags().String("group", "", "Only list tools of this group")
	return cmd
}

func runTools(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sel := tools.Selection{Prefix: cfg.Tools.Prefix, Groups: cfg.Tools.Groups}
	if group, _ := cmd.Flags().GetString("group"); group != "" {
		sel.Groups = []string{strings.ToLower(group)}
	}
	// Listing never executes, so no client is bound.
	registry, err := tools.NewCatalog(nil, sel)
	if err != nil {
		return exitError(exitRuntime, "Error: %v", err)
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(registry.All()); err != nil {
			return exitError(exitRuntime, "Error: %v", err)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGROUP\tDESCRIPTION")
	for _, desc := range registry.Descriptors() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", desc.Name, desc.Group, desc.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d tools\n", registry.Len())
	return nil
}
