// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tasksync/internal/logging"
	"github.com/tomtom215/tasksync/internal/session"
	"github.com/tomtom215/tasksync/internal/statusapi"
	"github.com/tomtom215/tasksync/internal/supervisor"
	"github.com/tomtom215/tasksync/internal/supervisor/services"
)

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the client until interrupted",
		Long: "Loads the task list, opens the realtime channel and keeps the local " +
			"collection in sync. The status API serves a read-only view if enabled.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClient(cmd.Context(), opts)
		},
	}
}

func runClient(parent context.Context, opts *RootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logging.Info().
		Str("realtime_url", cfg.Realtime.URL).
		Str("api_url", cfg.API.BaseURL).
		Bool("cache", cfg.Cache.Enabled).
		Bool("status_api", cfg.Status.Enabled).
		Msg("Starting tasksync")

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	supervisor.AddSession(tree, sess)
	if cfg.Status.Enabled {
		srv := statusapi.NewServer(cfg.Status, sess)
		tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Status.ShutdownTimeout))
		logging.Info().Str("addr", srv.Addr).Msg("Status API enabled")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Int("tasks", len(sess.Tasks())).Msg("Stopped")
	return nil
}
