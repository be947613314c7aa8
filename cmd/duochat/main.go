// Copyright (c) The duochat authors. All rights reserved.

// Command duochat is a console client for GitLab Duo Chat.
//
// Usage:
//
//	export GITLAB_URL=https://gitlab.example.com
//	export GITLAB_TOKEN=glpat-...
//	duochat chat
//
// Both values may also come from a .env file, flags, or an interactive
// prompt when running on a terminal.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gitlab.com/duo-console/duochat/graphql"
)

var (
	flagURL      string
	flagToken    string
	flagInsecure bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "duochat",
	Short: "duochat talks to GitLab Duo Chat from the command line",
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if flagDebug || os.Getenv("DUOCHAT_DEBUG") != "" {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func main() {
	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&flagURL, "gitlab-url", "", "GitLab base URL (defaults to $GITLAB_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "personal access token (defaults to $GITLAB_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&flagInsecure, "insecure", false, "skip TLS certificate verification")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(chatCmd, versionCmd, doctorCmd, mockServerCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// config holds the resolved connection settings.
type config struct {
	URL      string
	Token    string
	Insecure bool
}

// resolveConfig merges flags, environment, and, when running on a terminal,
// an interactive prompt for anything still missing.
func resolveConfig() (*config, error) {
	cfg := &config{
		URL:      flagURL,
		Token:    flagToken,
		Insecure: flagInsecure,
	}
	if cfg.URL == "" {
		cfg.URL = os.Getenv("GITLAB_URL")
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("GITLAB_TOKEN")
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd())
	if cfg.URL == "" && interactive {
		cfg.URL = prompt("GitLab URL (e.g., https://gitlab.com): ")
	}
	if cfg.Token == "" && interactive {
		cfg.Token = prompt("GitLab Personal Access Token: ")
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("no GitLab URL: set $GITLAB_URL or pass --gitlab-url")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("no access token: set $GITLAB_TOKEN or pass --token")
	}
	return cfg, nil
}

// transport builds the GraphQL transport for the resolved config.
func (c *config) transport() *graphql.Client {
	var opts []graphql.Option
	if c.Insecure {
		opts = append(opts, graphql.WithInsecureTLS())
	}
	return graphql.New(c.URL, c.Token, opts...)
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
