package transport_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"sealink/internal/transport"
)

func TestChannelOverWebSocket(t *testing.T) {
	clientCfg, serverCfg := testConfigs(t)
	upgrader := websocket.Upgrader{}

	done := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wc, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			done <- err
			return
		}
		conn, err := transport.Server(transport.NewWebSocketStream(wc), serverCfg)
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()
		msg, err := conn.Receive()
		if err != nil {
			done <- err
			return
		}
		done <- conn.Send(msg)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := transport.DialWebSocket(url, clientCfg)
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte("over websocket")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := client.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != "over websocket" {
		t.Fatalf("got %q", got)
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}
