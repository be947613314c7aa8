// Copyright (c) The duochat authors. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gitlab.com/duo-console/duochat/duochat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive Duo Chat session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		client := duochat.NewClient(cfg.transport())
		return runChat(cmd.Context(), client)
	},
}

func runChat(ctx context.Context, client *duochat.Client) error {
	available, err := client.Available(ctx)
	if err != nil {
		return fmt.Errorf("checking chat availability: %w", err)
	}
	if !available {
		fmt.Println("GitLab Duo Chat is not available for your account.")
		fmt.Println("Please check your GitLab instance version and your permissions.")
		return nil
	}

	version := client.ServerVersion(ctx)
	fmt.Println("===== GitLab Duo Chat =====")
	fmt.Printf("Server version: %s\n", version)
	fmt.Println("Type 'exit' to quit, '/clear' to reset the conversation.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit", "stop":
			return scanner.Err()
		}
		if line == duochat.ResetMessage {
			if err := clearConversation(ctx, client); err != nil {
				fmt.Println("Could not reset the conversation:", err)
			} else {
				fmt.Println("Conversation reset.")
			}
			continue
		}

		// Ctrl-C aborts the in-flight resolution, not the session.
		askCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		res, err := client.Ask(askCtx, line)
		stop()

		fmt.Println()
		switch {
		case errors.Is(err, context.Canceled):
			if ctx.Err() != nil {
				return nil
			}
			fmt.Println("Interrupted.")
		case err != nil:
			fmt.Println("GitLab Duo: request failed:", err)
		case res.State == duochat.StateResolved:
			fmt.Println("GitLab Duo:", renderMarkdown(res.Message.Content))
		default:
			fmt.Println("GitLab Duo: no response received within the wait budget.")
		}
		fmt.Println()
	}
	return scanner.Err()
}

func clearConversation(ctx context.Context, client *duochat.Client) error {
	askCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return client.Reset(askCtx)
}

// renderMarkdown pretty-prints an assistant answer when stdout is a
// terminal; otherwise the markdown passes through untouched.
func renderMarkdown(content string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return content
	}
	rendered, err := glamour.Render(content, "auto")
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
