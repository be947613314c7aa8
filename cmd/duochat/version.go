// Copyright (c) The duochat authors. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/duo-console/duochat/duochat"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the negotiated server version and capability tier",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		client := duochat.NewClient(cfg.transport())
		ctx := cmd.Context()

		version := client.ServerVersion(ctx)
		caps := client.Capabilities(ctx)

		fmt.Printf("Server version:      %s\n", version)
		fmt.Printf("Platform origin:     %v\n", caps.PlatformOrigin)
		fmt.Printf("Additional context:  %v\n", caps.AdditionalContext)
		fmt.Printf("Conversation threads: %v\n", caps.ConversationThreads)
		if caps.ConversationThreads {
			fmt.Printf("Conversation type:   %s\n", client.ConversationType(ctx))
		}
		return nil
	},
}
