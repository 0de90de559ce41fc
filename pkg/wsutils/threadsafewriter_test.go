package wsutils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWriteEvent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan *Message, 3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		reader := NewThreadSafeWriter(conn)
		defer reader.Close()

		for i := 0; i < 3; i++ {
			message, err := reader.ReadMessage()
			if err != nil {
				return
			}
			received <- message
		}
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	w := NewThreadSafeWriter(conn)
	defer w.Close()

	var wg sync.WaitGroup
	for _, payload := range []any{"raw", map[string]bool{"restartICE": false}, nil} {
		wg.Add(1)
		go func(payload any) {
			defer wg.Done()
			if err := w.WriteEvent("subscribe", payload); err != nil {
				t.Error(err)
			}
		}(payload)
	}
	wg.Wait()

	expected := map[string]bool{"raw": true, `{"restartICE":false}`: true, "": true}
	for i := 0; i < 3; i++ {
		message := <-received
		if message.Event != "subscribe" || !expected[message.Data] {
			t.Fatalf("unexpected message %+v", message)
		}
		delete(expected, message.Data)
	}
}
