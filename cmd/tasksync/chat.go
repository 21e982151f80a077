// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/realtime"
	"github.com/tomtom215/tasksync/internal/session"
)

func newChatCommand(opts *RootOptions) *cobra.Command {
	var connectWait time.Duration

	cmd := &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Send one chat message and print the assistant's reply",
		Long: "Sends over the realtime channel when it opens within --connect-wait, " +
			"otherwise through POST /chat.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			// One-shot commands do not serve or persist anything.
			cfg.Status.Enabled = false
			cfg.Cache.Enabled = false
			cfg.Sync.ResyncInterval = 0

			sess, err := session.New(cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				if err := sess.Realtime().Serve(ctx); err != nil && ctx.Err() == nil {
					logging.Warn().Err(err).Msg("Realtime loop stopped")
				}
			}()

			sess.Realtime().Open()
			waitForOpen(ctx, sess.Realtime(), connectWait)

			reply, path, err := sess.SendChatAndWait(ctx, strings.Join(args, " "), cfg.Chat.ReplyTimeout)
			sess.Stop()
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "reply": reply})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Response)
			return err
		},
	}

	cmd.Flags().DurationVar(&connectWait, "connect-wait", 3*time.Second, "how long to wait for the realtime channel before falling back")
	return cmd
}

// waitForOpen polls until the channel is open, has given up, or wait elapses.
func waitForOpen(ctx context.Context, m *realtime.Manager, wait time.Duration) {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(25 * time.Millisecond)
	defer tick.Stop()

	for {
		st := m.Status()
		if st.State == realtime.StateOpen || st.GaveUp {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}
