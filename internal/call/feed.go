package call

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// frame is the JSON shape of one realtime event
type frame struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

const frameEndCall = "end-call"

// Feed is an EventSource backed by a websocket. Events are emitted from the
// Run goroutine only, so listeners never run concurrently.
type Feed struct {
	*Emitter

	conn    *websocket.Conn
	writeMu sync.Mutex
	logger  *zap.Logger

	closeOnce sync.Once
}

// Dial opens the realtime event stream at url.
func Dial(ctx context.Context, url string, header http.Header, logger *zap.Logger) (*Feed, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial call events: %w", err)
	}
	return &Feed{Emitter: NewEmitter(), conn: conn, logger: logger}, nil
}

// Run reads frames until the peer closes the stream or ctx is done. A normal
// close returns nil.
func (f *Feed) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer func() {
		close(done)
		f.close()
	}()

	go func() {
		select {
		case <-ctx.Done():
			f.close()
		case <-done:
		}
	}()

	for {
		var fr frame
		if err := f.conn.ReadJSON(&fr); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read call event: %w", err)
		}

		event, ok := decodeFrame(fr)
		if !ok {
			f.logger.Debug("Ignoring unknown call event", zap.String("type", fr.Type))
			continue
		}
		f.Emit(event)
	}
}

// Stop sends the end-call frame and closes the stream politely. The peer's
// close ends Run.
func (f *Feed) Stop() error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := f.conn.WriteJSON(frame{Type: frameEndCall}); err != nil {
		return fmt.Errorf("send end-call: %w", err)
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := f.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		return fmt.Errorf("send close: %w", err)
	}
	return nil
}

func (f *Feed) close() {
	f.closeOnce.Do(func() {
		if err := f.conn.Close(); err != nil {
			f.logger.Debug("Closing call events", zap.Error(err))
		}
	})
}

func decodeFrame(fr frame) (Event, bool) {
	event := Event{Name: EventName(fr.Type)}
	switch event.Name {
	case EventCallStart, EventCallEnd, EventSpeechStart, EventSpeechEnd:
	case EventMessage:
		event.Message = fr.Message
	case EventError:
		if fr.Error == "" {
			fr.Error = "unknown call error"
		}
		event.Err = errors.New(fr.Error)
	default:
		return Event{}, false
	}
	return event, true
}
