// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

// Package main is the tasksync command line client.
//
// tasksync keeps a local copy of a task server's list in sync over a
// WebSocket channel, reconnecting with exponential backoff and falling back
// to the REST API when the channel is down.
//
// # Commands
//
//	tasksync run                  run the client until SIGINT or SIGTERM
//	tasksync list [filters]       print the server's list once (REST)
//	tasksync chat "add milk"      send one chat message and print the reply
//	tasksync version              print build information
//
// # Configuration
//
// Layered with Koanf v2, later sources win:
//   - Built-in defaults
//   - YAML file (--config, CONFIG_PATH, ./config.yaml, /etc/tasksync/config.yaml)
//   - Environment variables such as TASKSYNC_WS_URL, TASKSYNC_API_URL, LOG_LEVEL
//
// # Example
//
//	export TASKSYNC_WS_URL=ws://localhost:8000/api/v1/ws
//	export TASKSYNC_API_URL=http://localhost:8000/api/v1
//	tasksync run
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
