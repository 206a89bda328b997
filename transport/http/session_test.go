package http

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestCleanupSessionsKeepsOpenStreams(t *testing.T) {
	sm := NewSessionManager()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	idle := sm.CreateSession()
	streaming := sm.CreateSession()
	fresh := sm.CreateSession()

	rec := httptest.NewRecorder()
	if !sm.SetTransport(streaming, NewStreamableHTTPTransport(rec, rec, nil)) {
		t.Fatal("SetTransport on a live session failed")
	}

	now = now.Add(20 * time.Minute)
	sm.TouchSession(fresh)
	now = now.Add(15 * time.Minute)

	if removed := sm.CleanupSessions(30 * time.Minute); removed != 1 {
		t.Fatalf("removed %d sessions, want 1", removed)
	}
	if sm.HasSession(idle) {
		t.Error("idle session should be gone")
	}
	if !sm.HasSession(streaming) || !sm.HasSession(fresh) {
		t.Error("streaming and recently touched sessions should survive")
	}
}

func TestSetTransportReplacesStream(t *testing.T) {
	sm := NewSessionManager()
	id := sm.CreateSession()

	closed := 0
	rec := httptest.NewRecorder()
	first := NewStreamableHTTPTransport(rec, rec, func() { closed++ })
	second := NewStreamableHTTPTransport(rec, rec, nil)
	sm.SetTransport(id, first)
	sm.SetTransport(id, second)

	if closed != 1 || !first.IsClosed() {
		t.Error("replacing a stream should close the old one")
	}
	sm.ClearTransportIfMatch(id, first)
	if got, ok := sm.GetTransport(id); !ok || got != second {
		t.Error("clearing a stale stream must keep the active one")
	}

	sm.RemoveSession(id)
	if !second.IsClosed() {
		t.Error("removing a session closes its stream")
	}
	if sm.SetTransport(id, NewStreamableHTTPTransport(rec, rec, nil)) {
		t.Error("binding to a removed session should fail")
	}
}

func TestSendCommentSplitsLines(t *testing.T) {
	rec := httptest.NewRecorder()
	transport := NewStreamableHTTPTransport(rec, rec, nil)
	if err := transport.SendComment("a\r\nb"); err != nil {
		t.Fatalf("SendComment: %v", err)
	}
	if err := transport.Notify("notifications/ping", nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	want := ": a\n: b\n\nid: 1\nevent: message\ndata: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/ping\"}\n\n"
	if rec.Body.String() != want {
		t.Errorf("frames = %q\nwant %q", rec.Body.String(), want)
	}

	transport.Close()
	if err := transport.Notify("notifications/ping", nil); err == nil {
		t.Error("writes after Close should fail")
	}
}
