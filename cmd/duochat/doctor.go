// Copyright (c) The duochat authors. All rights reserved.

package main

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"gitlab.com/duo-console/duochat/duochat"
)

// doctorCmd checks both API surfaces the client depends on: the GraphQL
// endpoint used for chat, and the REST API as an independent cross-check of
// credentials and instance version.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check connectivity, credentials, and Duo Chat availability",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		fmt.Printf("Instance:      %s\n", cfg.URL)
		fmt.Printf("TLS verify:    %v\n", !cfg.Insecure)

		client := duochat.NewClient(cfg.transport())
		if available, err := client.Available(ctx); err != nil {
			fmt.Printf("GraphQL:       FAILED (%v)\n", err)
		} else {
			fmt.Printf("GraphQL:       ok\n")
			fmt.Printf("Duo Chat:      available=%v\n", available)
		}
		version := client.ServerVersion(ctx)
		caps := client.Capabilities(ctx)
		fmt.Printf("Version:       %s\n", version)
		fmt.Printf("Capabilities:  origin=%v context=%v threads=%v\n",
			caps.PlatformOrigin, caps.AdditionalContext, caps.ConversationThreads)

		rest, err := restClient(cfg)
		if err != nil {
			fmt.Printf("REST:          FAILED (%v)\n", err)
			return nil
		}
		if meta, _, err := rest.Metadata.GetMetadata(gitlab.WithContext(ctx)); err != nil {
			fmt.Printf("REST:          FAILED (%v)\n", err)
		} else {
			fmt.Printf("REST:          ok (version %s, enterprise=%v)\n", meta.Version, meta.Enterprise)
		}
		if user, _, err := rest.Users.CurrentUser(gitlab.WithContext(ctx)); err != nil {
			fmt.Printf("Token:         FAILED (%v)\n", err)
		} else {
			fmt.Printf("Token:         ok (user %s)\n", user.Username)
		}
		return nil
	},
}

func restClient(cfg *config) (*gitlab.Client, error) {
	opts := []gitlab.ClientOptionFunc{gitlab.WithBaseURL(cfg.URL)}
	if cfg.Insecure {
		tp := http.DefaultTransport.(*http.Transport).Clone()
		tp.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via --insecure
		opts = append(opts, gitlab.WithHTTPClient(&http.Client{Transport: tp}))
	}
	return gitlab.NewClient(cfg.Token, opts...)
}
