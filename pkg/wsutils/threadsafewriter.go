// Package wsutils wraps gorilla websocket connections for concurrent writers.
package wsutils

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the {event, data} envelope spoken on every stage websocket.
type Message struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// ThreadSafeWriter serializes writes. Reads are expected from one goroutine.
type ThreadSafeWriter struct {
	*websocket.Conn
	sync.Mutex
}

func (t *ThreadSafeWriter) WriteJSON(val interface{}) error {
	t.Lock()
	defer t.Unlock()

	return t.Conn.WriteJSON(val)
}

// WriteEvent encodes data as JSON into the data field of a Message. Strings
// are sent as is.
func (t *ThreadSafeWriter) WriteEvent(event string, data any) error {
	var payload string
	switch value := data.(type) {
	case nil:
	case string:
		payload = value
	default:
		bytes, err := json.Marshal(value)
		if err != nil {
			return err
		}
		payload = string(bytes)
	}

	return t.WriteJSON(&Message{Event: event, Data: payload})
}

// CloseGracefully sends a close frame before closing the connection.
func (t *ThreadSafeWriter) CloseGracefully(reason string) error {
	t.Lock()
	_ = t.Conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(time.Second),
	)
	t.Unlock()

	return t.Conn.Close()
}

func (t *ThreadSafeWriter) Close() error {
	return t.Conn.Close()
}

func (t *ThreadSafeWriter) ReadJSON(val any) error {
	return t.Conn.ReadJSON(val)
}

func (t *ThreadSafeWriter) ReadMessage() (*Message, error) {
	var message Message
	if err := t.Conn.ReadJSON(&message); err != nil {
		return nil, err
	}
	return &message, nil
}

func NewThreadSafeWriter(conn *websocket.Conn) *ThreadSafeWriter {
	return &ThreadSafeWriter{
		Conn: conn,
	}
}
