package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"pushc/internal/diag"
)

// explainCmd renders the long-form description of a diagnostic code.
var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Explain a diagnostic code in detail",
	Long:  "Show the long-form documentation for a numeric diagnostic code, e.g. `pushc explain 1009`.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("diagnostic codes are numeric, got %q", args[0])
	}
	tmpl, ok := diag.Templates[diag.Code(n)]
	if !ok {
		return fmt.Errorf("unknown diagnostic code %d", n)
	}

	doc := fmt.Sprintf("# Diagnostic %d\n\n**%s**\n\n%s\n", n, tmpl.Short, tmpl.Long)
	out, err := glamour.Render(doc, "auto")
	if err != nil {
		// Unstyled fallback, e.g. when no terminal is attached.
		fmt.Print(doc)
		return nil
	}
	fmt.Print(out)
	return nil
}
