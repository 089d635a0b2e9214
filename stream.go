package fast

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Stream is a response type for binary or streaming payloads. Returning
// *Stream from a handler bypasses codec negotiation entirely: the body is
// copied to the client as-is under the given content type.
type Stream struct {
	ContentType string
	Status      int
	Body        io.Reader
}

// SSEStream is a response type for server-sent events. The handler feeds
// events into the channel and closes it when done; each event is flushed
// to the client as it arrives.
type SSEStream struct {
	Events <-chan SSEEvent
}

// SSEEvent is a single server-sent event.
type SSEEvent struct {
	// Event maps to the "event:" field. Optional.
	Event string
	// Data is the payload. Strings and byte slices are written verbatim;
	// anything else is JSON-encoded.
	Data any
	// ID maps to the "id:" field. Optional.
	ID string
}

func writeStream(w http.ResponseWriter, s *Stream) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	status := s.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if s.Body != nil {
		//nolint:errcheck,gosec // best-effort streaming copy
		io.Copy(w, s.Body)
	}
}

func writeSSEStream(w http.ResponseWriter, s *SSEStream) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for event := range s.Events {
		writeSSEEvent(w, event)
		flusher.Flush()
	}
}

func writeSSEEvent(w io.Writer, event SSEEvent) {
	emit := func(field, value string) {
		//nolint:errcheck // best-effort SSE write
		fmt.Fprintf(w, "%s: %s\n", field, value)
	}

	if event.ID != "" {
		emit("id", event.ID)
	}
	if event.Event != "" {
		emit("event", event.Event)
	}

	switch v := event.Data.(type) {
	case string:
		emit("data", v)
	case []byte:
		emit("data", string(v))
	default:
		if data, err := json.Marshal(v); err != nil {
			emit("data", err.Error())
		} else {
			emit("data", string(data))
		}
	}

	//nolint:errcheck // best-effort SSE write
	fmt.Fprint(w, "\n")
}
