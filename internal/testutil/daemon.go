package testutil

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/thenoetrevino/tasks/internal/daemon"
	"github.com/thenoetrevino/tasks/internal/events"
)

// SetupTestDaemon starts a daemon on a socket inside a temp dir and waits
// for the socket to appear. The daemon is shut down by test cleanup.
func SetupTestDaemon(t *testing.T, opts ...daemon.Option) (*daemon.Server, string) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "tasks.sock")
	server, err := daemon.NewServer(socketPath, opts...)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		if err := server.Shutdown(); err != nil {
			t.Logf("Warning: daemon shutdown error during cleanup: %v", err)
		}
	})

	go func() {
		if err := server.Start(ctx); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	if !WaitForCondition(t, func() bool {
		_, err := os.Stat(socketPath)
		return err == nil
	}, 2*time.Second, "daemon socket created") {
		t.Fatal("Timeout waiting for daemon socket to be created")
	}
	return server, socketPath
}

// SetupTestClient connects an event client with a short debounce.
// The client is closed by test cleanup.
func SetupTestClient(t *testing.T, socketPath string, opts ...events.ClientOption) *events.Client {
	t.Helper()

	opts = append([]events.ClientOption{events.WithDebounce(10 * time.Millisecond)}, opts...)
	client, err := events.NewClient(socketPath, opts...)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Warning: client close error during cleanup: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}
	return client
}

// RawPeer speaks the daemon wire protocol directly, without the batching
// and reconnection of events.Client
type RawPeer struct {
	t    *testing.T
	conn net.Conn
	enc  sonic.Encoder
	dec  sonic.Decoder
}

// ConnectRawPeer dials the daemon socket. The connection is closed by test
// cleanup.
func ConnectRawPeer(t *testing.T, socketPath string) *RawPeer {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial daemon socket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &RawPeer{t: t, conn: conn, enc: events.NewEncoder(conn), dec: events.NewDecoder(conn)}
}

// Subscribe limits deliveries to collection; "" subscribes to all
func (p *RawPeer) Subscribe(collection string) {
	p.t.Helper()
	p.send(events.Message{
		Version:   events.ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &events.SubscribeMessage{Collection: collection},
	})
}

// Publish sends a single event
func (p *RawPeer) Publish(event events.Event) {
	p.t.Helper()
	p.send(events.Message{Version: events.ProtocolVersion, Type: "event", Event: &event})
}

func (p *RawPeer) send(msg events.Message) {
	p.t.Helper()
	if err := p.enc.Encode(msg); err != nil {
		p.t.Fatalf("Failed to send %s message: %v", msg.Type, err)
	}
}

// Read returns the next message, failing the test after timeout
func (p *RawPeer) Read(timeout time.Duration) events.Message {
	p.t.Helper()

	if err := p.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		p.t.Fatalf("Failed to set read deadline: %v", err)
	}
	var msg events.Message
	if err := p.dec.Decode(&msg); err != nil {
		p.t.Fatalf("Failed to read message: %v", err)
	}
	return msg
}

// WaitForEvent returns the next event on ch, failing the test after timeout
func WaitForEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) events.Event {
	t.Helper()

	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Event channel closed unexpectedly")
		}
		return event
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for event after %v", timeout)
		return events.Event{}
	}
}

// WaitForNoEvent fails the test if an event arrives on ch within timeout
func WaitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()

	select {
	case event := <-ch:
		t.Fatalf("Unexpected event received: %+v", event)
	case <-time.After(timeout):
	}
}

// WaitForCondition polls condition until it holds or timeout passes
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, description string) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Logf("Timeout waiting for condition: %s", description)
	return false
}
