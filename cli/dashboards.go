package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/slighter12/brevo-mcp-go/dashboards"
)

// NewDashboardsCmd creates the "dashboards" command group.
func NewDashboardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboards",
		Short: "List dashboard templates, built-in and loaded",
		Args:  cobra.NoArgs,
		RunE:  runDashboardsList,
	}
	cmd.AddCommand(newDashboardsShowCmd())
	return cmd
}

func newDashboardsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Render a dashboard template",
		Args:  cobra.ExactArgs(1),
		RunE:  runDashboardsShow,
	}
	cmd.Flags().StringToString("arg", nil, "Template argument key=value (repeatable)")
	return cmd
}

func loadDashboards(cmd *cobra.Command) (*dashboards.Catalog, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	catalog, err := dashboards.NewCatalog()
	if err != nil {
		return nil, exitError(exitRuntime, "Error: %v", err)
	}
	if err := catalog.Load(cfg.Dashboards.Paths, cfg.Dashboards.AllowedRoots); err != nil {
		for _, warning := range catalog.LoadErrors() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
		}
	}
	return catalog, nil
}

func runDashboardsList(cmd *cobra.Command, _ []string) error {
	catalog, err := loadDashboards(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tARGUMENTS\tSOURCE")
	for _, d := range catalog.List() {
		var argNames []string
		for _, arg := range d.Arguments {
			name := arg.Name
			if arg.Required {
				name += "*"
			}
			argNames = append(argNames, name)
		}
		source := "builtin"
		if !d.Builtin {
			source = d.Source
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.Title, strings.Join(argNames, ","), source)
	}
	return w.Flush()
}

func runDashboardsShow(cmd *cobra.Command, args []string) error {
	catalog, err := loadDashboards(cmd)
	if err != nil {
		return err
	}
	values, _ := cmd.Flags().GetStringToString("arg")
	text, err := catalog.Render(args[0], values)
	if err != nil {
		if errors.Is(err, dashboards.ErrNotFound) {
			return exitError(exitRuntime, "Error: unknown dashboard %q", args[0])
		}
		return exitError(exitRuntime, "Error: %v", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
