// cmd/transcript/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"guesser/config"
	"guesser/services"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: transcript [-config path] <conversation-id>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, flag.Arg(0), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, conversationID string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := services.NewConversationStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	return printTranscript(ctx, services.NewSessionService(store, nil, services.WithTurnCap(cfg.Game.TurnCap)), conversationID, out)
}

func printTranscript(ctx context.Context, sessions *services.SessionService, conversationID string, out io.Writer) error {
	conv, err := sessions.Conversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("read conversation %s: %w", conversationID, err)
	}

	state := "ACTIVE"
	if sessions.Exhausted(conv) {
		state = "EXHAUSTED"
	}

	fmt.Fprintf(out, "conversation: %s\nturns: %d\nstate: %s\n\n", conv.ID, conv.Len(), state)
	_, err = io.WriteString(out, services.RenderTranscript(conv.Turns))
	return err
}
