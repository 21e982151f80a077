// Tasksync - Realtime Task List Synchronization Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasksync

package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/tasksync/internal/protocol"
)

func TestTranscript_UserAndReply(t *testing.T) {
	tr := NewTranscript(10)

	user := tr.AddUser("add milk")
	if !user.IsUser || user.Message != "add milk" || user.ID == uuid.Nil {
		t.Errorf("user message = %+v", user)
	}
	if !tr.Pending() {
		t.Error("Pending() = false after user message")
	}

	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	tr.OnChatResponse(protocol.ChatResponse{Response: "Added", TasksUpdated: true, Timestamp: at})

	if tr.Pending() {
		t.Error("Pending() = true after reply")
	}
	msgs := tr.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	reply := msgs[1]
	if reply.IsUser || reply.Response != "Added" || !reply.TasksUpdated || !reply.Timestamp.Equal(at) {
		t.Errorf("reply = %+v", reply)
	}
	if reply.ID == user.ID {
		t.Error("messages must have distinct ids")
	}
}

func TestTranscript_ZeroTimestampUsesLocalClock(t *testing.T) {
	tr := NewTranscript(10)
	fixed := time.Date(2026, 5, 5, 5, 5, 5, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	msg := tr.AddReply("hi", false, time.Time{})
	if !msg.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, fixed)
	}
}

func TestTranscript_Bounded(t *testing.T) {
	tr := NewTranscript(3)
	for i := 0; i < 5; i++ {
		tr.AddUser(fmt.Sprintf("m%d", i))
	}

	msgs := tr.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i, want := range []string{"m2", "m3", "m4"} {
		if msgs[i].Message != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Message, want)
		}
	}
}

func TestTranscript_DefaultLimit(t *testing.T) {
	if tr := NewTranscript(0); tr.limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", tr.limit, DefaultLimit)
	}
}

func TestTranscript_NextReply(t *testing.T) {
	tr := NewTranscript(10)

	reply, cancel := tr.NextReply()
	defer cancel()

	go tr.AddReply("done", false, time.Time{})

	select {
	case msg := <-reply:
		if msg.Response != "done" {
			t.Errorf("reply = %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestTranscript_NextReplyCancel(t *testing.T) {
	tr := NewTranscript(10)

	reply, cancel := tr.NextReply()
	cancel()
	tr.AddReply("late", false, time.Time{})

	select {
	case msg := <-reply:
		t.Errorf("canceled waiter received %+v", msg)
	default:
	}
	// cancel after delivery is harmless
	cancel()
}

func TestTranscript_CancelPending(t *testing.T) {
	tr := NewTranscript(10)
	tr.AddUser("hello")
	tr.CancelPending()
	if tr.Pending() {
		t.Error("Pending() = true after CancelPending")
	}
	tr.CancelPending()
	if tr.Pending() {
		t.Error("pending count went negative")
	}
}

func TestTranscript_Concurrent(t *testing.T) {
	tr := NewTranscript(50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				tr.AddUser(fmt.Sprintf("%d-%d", i, j))
				tr.AddReply("ok", false, time.Time{})
				_ = tr.Messages()
			}
		}(i)
	}
	wg.Wait()

	if tr.Len() != 50 {
		t.Errorf("Len() = %d, want 50", tr.Len())
	}
	if tr.Pending() {
		t.Error("every user message got a reply")
	}
}
