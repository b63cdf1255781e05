package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"

	"ampersand-agent/pkg/events"
	pktNats "ampersand-agent/pkg/nats"

	"github.com/spf13/cobra"
)

var eventsFilter string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow domain events published to NATS",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print events as they arrive until interrupted",
	RunE:  runEventsTail,
}

func init() {
	eventsTailCmd.Flags().StringVar(&eventsFilter, "filter", pktNats.SubjectPrefix+">", "Subject filter")
	eventsCmd.AddCommand(eventsTailCmd)
}

func runEventsTail(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.App.NatsURL == "" {
		return errors.New("NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, newLogger(cfg))
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	return sub.Subscribe(ctx, eventsFilter, "", func(ctx context.Context, event events.Event) error {
		printEvent(out, event)
		return nil
	})
}

func printEvent(out io.Writer, event events.Event) {
	heading.Fprintf(out, "%s", event.EventType())
	fmt.Fprintf(out, " %s\n", event.Timestamp().Format("15:04:05"))

	payload := event.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		faint.Fprintf(out, "  %s: ", k)
		fmt.Fprintf(out, "%v\n", payload[k])
	}
}
