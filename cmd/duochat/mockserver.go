// Copyright (c) The duochat authors. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gitlab.com/duo-console/duochat/mockserver"
)

var (
	flagMockAddr  string
	flagMockDelay time.Duration
)

// mockServerCmd runs the mock GitLab instance, useful for trying the chat
// command without a real deployment:
//
//	duochat mock-server &
//	duochat chat --gitlab-url http://localhost:8989 --token dummy
var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a mock GitLab instance for local development",
	RunE: func(cmd *cobra.Command, _ []string) error {
		srv := &http.Server{
			Addr: flagMockAddr,
			Handler: mockserver.New(
				mockserver.WithReplyDelay(flagMockDelay),
			),
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			fmt.Printf("mock GitLab listening on %s\n", flagMockAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	mockServerCmd.Flags().StringVar(&flagMockAddr, "addr", ":8989", "listen address")
	mockServerCmd.Flags().DurationVar(&flagMockDelay, "reply-delay", 2*time.Second, "how long replies stay invisible to the read paths")
}
