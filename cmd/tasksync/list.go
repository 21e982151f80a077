// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/tasksync/internal/models"
	"github.com/tomtom215/tasksync/internal/taskapi"
	"github.com/tomtom215/tasksync/internal/validation"
)

type listOptions struct {
	completed string
	priority  string
	category  string
	search    string
}

func newListCommand(opts *RootOptions) *cobra.Command {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the server's task list once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := lo.filter()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			tasks, err := taskapi.NewClient(cfg.API).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), tasks)
			}
			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}

	cmd.Flags().StringVar(&lo.completed, "completed", "", "only completed (true) or open (false) tasks")
	cmd.Flags().StringVarP(&lo.priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&lo.category, "category", "", "exact category")
	cmd.Flags().StringVarP(&lo.search, "search", "s", "", "substring of title, description or category")

	return cmd
}

func (lo *listOptions) filter() (models.Filter, error) {
	f := models.Filter{
		Priority: models.Priority(strings.ToLower(lo.priority)),
		Category: lo.category,
		Search:   lo.search,
	}
	switch strings.ToLower(lo.completed) {
	case "":
	case "true", "yes", "1":
		f.Completed = models.BoolPtr(true)
	case "false", "no", "0":
		f.Completed = models.BoolPtr(false)
	default:
		return f, fmt.Errorf("--completed must be true or false, got %q", lo.completed)
	}
	if err := validation.Check(&f); err != nil {
		return f, err
	}
	return f, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTasks(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tCATEGORY\tTITLE")
	for i := range tasks {
		t := &tasks[i]
		done := " "
		if t.Completed {
			done = "x"
		}
		category := ""
		if t.Category != nil {
			category = *t.Category
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, done, t.Priority, category, t.Title)
	}
	return tw.Flush()
}
