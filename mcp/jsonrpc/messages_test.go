package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestRequestIsNotification(t *testing.T) {
	var notification, call Request
	if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`), &notification); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":0,"method":"ping"}`), &call); err != nil {
		t.Fatal(err)
	}
	if !notification.IsNotification() {
		t.Error("message without id should be a notification")
	}
	if call.IsNotification() {
		t.Error("id 0 is a call, not a notification")
	}
}

func TestResponsesCarryVersion(t *testing.T) {
	tests := []struct {
		name string
		msg  any
		want string
	}{
		{"result", NewResponse(1, map[string]any{}), `{"jsonrpc":"2.0","id":1,"result":{}}`},
		{"error", NewErrorResponse("a", int(ErrMethodNotFound), "Method not found", nil), `{"jsonrpc":"2.0","id":"a","error":{"code":-32601,"message":"Method not found"}}`},
		{"notification", NewNotification("notifications/prompts/list_changed", nil), `{"jsonrpc":"2.0","method":"notifications/prompts/list_changed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatal(err)
			}
			if string(raw) != tt.want {
				t.Errorf("got %s, want %s", raw, tt.want)
			}
		})
	}
}
