package transport_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"sealink/internal/crypto"
	"sealink/internal/domain"
	"sealink/internal/transport"
)

func newIdentity(t *testing.T) domain.Identity {
	t.Helper()
	priv, pub, err := crypto.GenerateEd25519(rand.Reader)
	if err != nil {
		t.Fatalf("generate identity: %v", err)
	}
	return domain.Identity{EdPub: pub, EdPriv: priv}
}

// connect runs both handshake halves over an in-memory pipe.
func connect(t *testing.T, clientCfg, serverCfg transport.Config) (*transport.Conn, *transport.Conn) {
	t.Helper()
	cs, ss := net.Pipe()
	type result struct {
		conn *transport.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := transport.Server(ss, serverCfg)
		done <- result{conn, err}
	}()
	client, err := transport.Client(cs, clientCfg)
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	r := <-done
	if r.err != nil {
		t.Fatalf("Server: %v", r.err)
	}
	return client, r.conn
}

func testConfigs(t *testing.T) (transport.Config, transport.Config) {
	t.Helper()
	clientID := newIdentity(t)
	serverID := newIdentity(t)
	return transport.Config{Identity: clientID, Peer: serverID.EdPub},
		transport.Config{Identity: serverID, Peer: clientID.EdPub}
}

func TestConnSendReceive(t *testing.T) {
	clientCfg, serverCfg := testConfigs(t)
	client, server := connect(t, clientCfg, serverCfg)
	defer client.Close()
	defer server.Close()

	recv := make(chan []byte, 3)
	errs := make(chan error, 1)
	go func() {
		for i := 0; i < 3; i++ {
			msg, err := server.Receive()
			if err != nil {
				errs <- err
				return
			}
			recv <- msg
		}
		errs <- nil
	}()

	for _, msg := range []string{"a", "bb", "ccc"} {
		if err := client.Send([]byte(msg)); err != nil {
			t.Fatalf("Send %q: %v", msg, err)
		}
	}
	if err := <-errs; err != nil {
		t.Fatalf("Receive: %v", err)
	}
	for _, want := range []string{"a", "bb", "ccc"} {
		if got := <-recv; !bytes.Equal(got, []byte(want)) {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestConnEcho(t *testing.T) {
	clientCfg, serverCfg := testConfigs(t)
	client, server := connect(t, clientCfg, serverCfg)
	defer client.Close()
	defer server.Close()

	go func() {
		for {
			msg, err := server.Receive()
			if err != nil {
				return
			}
			if err := server.Send(msg); err != nil {
				return
			}
		}
	}()

	payload := bytes.Repeat([]byte("sealink"), 512)
	errs := make(chan error, 1)
	go func() { errs <- client.Send(payload) }()
	echoed, err := client.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !bytes.Equal(echoed, payload) {
		t.Fatal("echo mismatch")
	}
}

func TestCloseSurfacesAsEOF(t *testing.T) {
	clientCfg, serverCfg := testConfigs(t)
	client, server := connect(t, clientCfg, serverCfg)
	defer server.Close()

	errs := make(chan error, 1)
	go func() { errs <- client.Close() }()
	if _, err := server.Receive(); !errors.Is(err, io.EOF) {
		t.Fatalf("Receive after close: got %v, want io.EOF", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestStreamDeathIsNotCleanClose(t *testing.T) {
	clientCfg, serverCfg := testConfigs(t)
	cs, ss := net.Pipe()
	type result struct {
		conn *transport.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := transport.Server(ss, serverCfg)
		done <- result{conn, err}
	}()
	if _, err := transport.Client(cs, clientCfg); err != nil {
		t.Fatalf("Client: %v", err)
	}
	r := <-done
	if r.err != nil {
		t.Fatalf("Server: %v", r.err)
	}
	server := r.conn
	defer server.Close()

	// Kill the raw stream without sending the close frame.
	go func() {
		time.Sleep(10 * time.Millisecond)
		cs.Close()
	}()
	if _, err := server.Receive(); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Receive after truncation: got %v, want a non-EOF error", err)
	}
}

func TestWrongServerIdentityRejected(t *testing.T) {
	clientID := newIdentity(t)
	serverID := newIdentity(t)
	impostor := newIdentity(t)

	cs, ss := net.Pipe()
	go func() {
		// The server presents its real key; the client expects the
		// impostor's.
		conn, err := transport.Server(ss, transport.Config{Identity: serverID})
		if err == nil {
			conn.Close()
		}
		ss.Close()
	}()
	_, err := transport.Client(cs, transport.Config{Identity: clientID, Peer: impostor.EdPub})
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("Client: got %v, want ErrAuthenticationFailed", err)
	}
	cs.Close()
}

func TestDialAndListen(t *testing.T) {
	clientCfg, serverCfg := testConfigs(t)
	ln, err := transport.Listen("127.0.0.1:0", serverCfg)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
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
	}()

	client, err := transport.Dial(ln.Addr().String(), clientCfg)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	if err := client.Send([]byte("over tcp")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := client.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(got) != "over tcp" {
		t.Fatalf("got %q", got)
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestHybridSuiteOverTransport(t *testing.T) {
	clientCfg, serverCfg := testConfigs(t)
	clientCfg.Exchange = crypto.HybridExchange{}
	serverCfg.Exchange = crypto.HybridExchange{}
	client, server := connect(t, clientCfg, serverCfg)
	defer client.Close()
	defer server.Close()

	errs := make(chan error, 1)
	go func() { errs <- client.Send([]byte("post-quantum hello")) }()
	msg, err := server.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(msg) != "post-quantum hello" {
		t.Fatalf("got %q", msg)
	}
}
