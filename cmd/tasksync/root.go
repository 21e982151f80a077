// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tasksync/internal/config"
	"github.com/tomtom215/tasksync/internal/logging"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	JSON       bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "tasksync",
		Short:         "Realtime task list synchronization client",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
				return fmt.Errorf("invalid log level %q", opts.LogLevel)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: CONFIG_PATH or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override the configured log level")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print results as JSON")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newChatCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))

	return cmd
}

// loadConfig loads configuration and initializes logging from it.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}
