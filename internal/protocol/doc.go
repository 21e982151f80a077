// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

/*
Package protocol defines the realtime wire format and the inbound dispatcher.

Inbound frames are JSON objects keyed by "type":

	{"type":"task_created","task":{...}}
	{"type":"task_updated","task":{...}}
	{"type":"task_deleted","task_id":7}
	{"type":"tasks_updated","data":[{...},{...}]}
	{"type":"chat_response","response":"Done","tasks_updated":true,"timestamp":"..."}
	{"type":"pong","timestamp":"..."}

Parse turns a frame into exactly one Event. Payloads are validated before
use; a frame that fails to parse or validate is dropped and counted. Frames
with an unknown or missing type become KindUnrecognized events, which only
reach generic subscribers.

The Dispatcher routes events: task events to a Reconciler, chat responses to
a ChatSink, then per-kind handlers registered with Handle, then generic
subscribers registered with Subscribe.

Outbound commands:

	{"type":"chat","message":"add milk to my list"}
	{"type":"ping"}
*/
package protocol
