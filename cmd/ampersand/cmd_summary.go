package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Inspect persisted conversation summaries",
}

var summaryShowCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Print the stored summary of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummaryShow,
}

func init() {
	summaryCmd.AddCommand(summaryShowCmd)
}

func runSummaryShow(cmd *cobra.Command, args []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	out := cmd.OutOrStdout()
	summary := container.Store.LoadSummary(ctx, args[0])
	if summary == "" {
		faint.Fprintf(out, "No summary stored for %s\n", args[0])
		return nil
	}
	heading.Fprintf(out, "Summary of %s\n", args[0])
	fmt.Fprintln(out, summary)
	return nil
}
