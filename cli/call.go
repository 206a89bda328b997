package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slighter12/brevo-mcp-go/tools/types"
)

// NewCallCmd creates the "call" subcommand, which runs one tool against the
// live API and prints the {ok, payload, isError} envelope.
func NewCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a single tool and print its result",
		Long: "Invoke a single tool through the same validation and dispatch path MCP clients use.\n" +
			"Exits 2 when the tool reports an error.",
		Args: cobra.ExactArgs(1),
		RunE: runCall,
	}
	cmd.Flags().String("args", "{}", `Tool arguments as a JSON object, or "-" to read them from stdin`)
	cmd.Flags().Bool("text", false, "Print only the payload text instead of the result envelope")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	raw, err := readArguments(cmd)
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, configPath, cmd.Root().Version)
	if err != nil {
		return exitError(exitRuntime, "Error: %v", err)
	}
	defer a.Close(cmd.Context())

	ctx := types.WithMCPContext(cmd.Context(), types.MCPContext{Transport: "cli"})
	result := a.dispatcher.CallJSON(ctx, name, raw)

	out := cmd.OutOrStdout()
	if textOnly, _ := cmd.Flags().GetBool("text"); textOnly {
		fmt.Fprintln(out, result.Text())
	} else {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return exitError(exitRuntime, "Error: %v", err)
		}
	}
	if result.IsError {
		return &ExitError{Code: exitToolError}
	}
	return nil
}

func readArguments(cmd *cobra.Command) (json.RawMessage, error) {
	value, _ := cmd.Flags().GetString("args")
	if value == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, exitError(exitRuntime, "Error: reading arguments: %v", err)
		}
		value = string(data)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if !json.Valid([]byte(value)) {
		return nil, exitError(exitRuntime, "Error: --args must be valid JSON")
	}
	return json.RawMessage(value), nil
}

