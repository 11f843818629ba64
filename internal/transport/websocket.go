package transport

import (
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// wsStream adapts a WebSocket connection to the io.ReadWriteCloser the
// channel driver expects. Frame boundaries are irrelevant to the codec,
// so each write becomes one binary message and reads drain messages as a
// byte stream.
type wsStream struct {
	c *websocket.Conn
	r io.Reader
}

// NewWebSocketStream wraps an upgraded WebSocket connection for use with
// Client or Server.
func NewWebSocketStream(c *websocket.Conn) io.ReadWriteCloser {
	return &wsStream{c: c}
}

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.r == nil {
			t, r, err := s.c.NextReader()
			if err != nil {
				return 0, err
			}
			if t != websocket.BinaryMessage {
				continue // protocol frames are binary only
			}
			s.r = r
		}
		n, err := s.r.Read(p)
		if err == io.EOF {
			s.r = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.c.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetDeadline lets the handshake timeout apply to WebSocket streams.
func (s *wsStream) SetDeadline(t time.Time) error {
	if err := s.c.SetReadDeadline(t); err != nil {
		return err
	}
	return s.c.SetWriteDeadline(t)
}

func (s *wsStream) Close() error {
	_ = s.c.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.c.Close()
}

// DialWebSocket connects to a WebSocket endpoint and completes the
// handshake as the initiator.
func DialWebSocket(url string, cfg Config) (*Conn, error) {
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn, err := Client(NewWebSocketStream(wc), cfg)
	if err != nil {
		wc.Close()
		return nil, err
	}
	return conn, nil
}
