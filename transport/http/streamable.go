package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/slighter12/brevo-mcp-go/mcp/jsonrpc"
)

var errStreamClosed = errors.New("stream is closed")

// StreamableHTTPTransport is the server-to-client SSE stream opened by GET /mcp.
// POST responses stay plain JSON; the stream carries notifications only.
type StreamableHTTPTransport struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	closed  bool
	nextID  uint64
	onClose func()
	once    sync.Once
}

// NewStreamableHTTPTransport wraps an SSE response. onClose runs once, when the
// stream is closed from either side.
func NewStreamableHTTPTransport(w http.ResponseWriter, f http.Flusher, onClose func()) *StreamableHTTPTransport {
	return &StreamableHTTPTransport{
		writer:  w,
		flusher: f,
		onClose: onClose,
	}
}

// Notify sends a JSON-RPC notification as a "message" event.
func (t *StreamableHTTPTransport) Notify(method string, params any) error {
	return t.SendSSE("message", jsonrpc.NewNotification(method, params))
}

// SendSSE writes one event frame with a JSON payload. Event IDs increase per
// stream.
func (t *StreamableHTTPTransport) SendSSE(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE data: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errStreamClosed
	}
	t.nextID++
	frame := fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", t.nextID, event, payload)
	if err := t.writeLocked(frame); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}
	return nil
}

// SendComment writes one comment frame, used for keep-alives.
func (t *StreamableHTTPTransport) SendComment(comment string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errStreamClosed
	}

	lines := strings.Split(strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(comment), "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(": ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if err := t.writeLocked(b.String()); err != nil {
		return fmt.Errorf("failed to write SSE comment: %w", err)
	}
	return nil
}

func (t *StreamableHTTPTransport) writeLocked(frame string) error {
	if _, err := io.WriteString(t.writer, frame); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

// Close marks the stream closed and releases the GET handler.
func (t *StreamableHTTPTransport) Close() error {
	t.mu.Lock()
	wasOpen := !t.closed
	t.closed = true
	t.mu.Unlock()

	if wasOpen && t.onClose != nil {
		t.once.Do(t.onClose)
	}
	return nil
}

func (t *StreamableHTTPTransport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
