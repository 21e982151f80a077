// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package protocol

import (
	"github.com/goccy/go-json"
)

// Outbound command types.
const (
	CommandChat = "chat"
	CommandPing = "ping"
)

// Command is an outbound frame.
type Command struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// ChatCommand asks the server's interpreter to act on text.
func ChatCommand(text string) Command {
	return Command{Type: CommandChat, Message: text}
}

// HeartbeatCommand is the periodic liveness ping.
func HeartbeatCommand() Command {
	return Command{Type: CommandPing}
}

// Encode returns the wire form of c.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}
