package main

import (
	"context"
	"fmt"
	"strings"

	"ampersand-agent/pkg/mode"
	"ampersand-agent/pkg/rag/executor"

	"github.com/spf13/cobra"
)

var (
	askMode         string
	askConversation string
	askForceSearch  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Run one query through the response pipeline",
	Long: `Run one query through the full pipeline in-process: search decision,
retrieval, memory and generation. The conversation's summary backend is the
configured one, so summaries written here are visible to the bots.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the response modes and their triggers",
	RunE:  runModes,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "Response mode (see 'ampersand modes')")
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "cli", "Conversation id")
	askCmd.Flags().BoolVar(&askForceSearch, "search", false, "Search the web even when the policy would not")
}

func runAsk(cmd *cobra.Command, args []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	reply, err := container.ChatbotService.Ask(ctx, executor.InboundQuery{
		ConversationID: askConversation,
		Query:          strings.Join(args, " "),
		ForceSearch:    askForceSearch,
		ModeName:       askMode,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reply == "" {
		faint.Fprintln(out, "(no reply)")
		return nil
	}
	fmt.Fprintln(out, reply)
	return nil
}

func runModes(cmd *cobra.Command, args []string) error {
	catalog, err := mode.DefaultCatalog()
	if err != nil {
		return err
	}
	printModes(cmd, catalog)
	return nil
}

func printModes(cmd *cobra.Command, catalog *mode.Catalog) {
	out := cmd.OutOrStdout()
	for _, m := range catalog.Modes() {
		heading.Fprintf(out, "%s\n", m.Title())
		fmt.Fprintf(out, "  %s\n", m.Description)
		faint.Fprintf(out, "  triggers: %s\n", strings.Join(m.Triggers, ", "))
	}
}
