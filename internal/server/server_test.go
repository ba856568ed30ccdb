package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	telclient "github.com/mission-control/telemetry/internal/client"
	"github.com/mission-control/telemetry/internal/mock"
	"github.com/mission-control/telemetry/internal/telemetry"
)

// countingSource returns a fixed snapshot with Trajectory set to the call count.
type countingSource struct {
	calls atomic.Int64
}

func (s *countingSource) Next() telemetry.Snapshot {
	n := s.calls.Add(1)
	return telemetry.Snapshot{
		FuelLevel:     88,
		CabinPressure: 14.71,
		Trajectory:    float64(n),
		Status:        telemetry.StatusNominal,
		NodeName:      "pad-39a",
		Version:       "v1.0.0",
	}
}

func newTestServer(t *testing.T, src Source) (*httptest.Server, *Broadcaster) {
	t.Helper()
	b := NewBroadcaster(src, nil)
	srv := httptest.NewServer(New(src, b, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, b
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestTelemetryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &countingSource{})

	resp, err := http.Get(srv.URL + "/api/telemetry")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"fuelLevel", "cabinPressure", "trajectory", "status", "nodeName", "version"} {
		if _, ok := body[field]; !ok {
			t.Errorf("response missing %q", field)
		}
	}
}

func TestClientAgainstServer(t *testing.T) {
	gen := mock.NewGenerator("pad-39a", "v3.1.0", 99)
	srv, _ := newTestServer(t, gen)

	c, err := telclient.NewHTTPClient("/api", srv.URL, telclient.WithStrictFields())
	if err != nil {
		t.Fatalf("NewHTTPClient() error: %v", err)
	}
	for i := 0; i < 20; i++ {
		s, err := c.FetchTelemetry(context.Background())
		if err != nil {
			t.Fatalf("FetchTelemetry() error: %v", err)
		}
		if s.NodeName != "pad-39a" || s.Version != "v3.1.0" {
			t.Errorf("identity = %q/%q", s.NodeName, s.Version)
		}
		if s.Status != mock.StatusFor(s.CabinPressure) {
			t.Errorf("status %q does not match pressure %v", s.Status, s.CabinPressure)
		}
	}
}

func TestTelemetryMethods(t *testing.T) {
	srv, _ := newTestServer(t, &countingSource{})

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodOptions, http.StatusNoContent},
		{http.MethodPost, http.StatusMethodNotAllowed},
		{http.MethodDelete, http.StatusMethodNotAllowed},
		{http.MethodHead, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+"/api/telemetry", nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request error: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &countingSource{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "ok" || h.WSClients != 0 {
		t.Errorf("health = %+v", h)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, b *Broadcaster, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("ClientCount = %d, want %d", b.ClientCount(), want)
}

func TestWebSocketPush(t *testing.T) {
	srv, b := newTestServer(t, &countingSource{})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL)+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readMessage(t, conn)
	if first.Type != MsgTelemetry || first.Payload == nil {
		t.Fatalf("first message = %+v, want telemetry", first)
	}
	waitForClients(t, b, 1)

	b.Broadcast()
	second := readMessage(t, conn)
	if second.Payload.Trajectory <= first.Payload.Trajectory {
		t.Errorf("broadcast should carry a fresh snapshot: %v then %v", first.Payload.Trajectory, second.Payload.Trajectory)
	}

	conn.Close()
	waitForClients(t, b, 0)
}

func TestBroadcasterRunClosesClientsOnCancel(t *testing.T) {
	srv, b := newTestServer(t, &countingSource{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.URL)+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot plus at least one tick.
	readMessage(t, conn)
	readMessage(t, conn)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if b.ClientCount() != 0 {
		t.Errorf("ClientCount = %d after shutdown, want 0", b.ClientCount())
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "example.com", true},
		{"http://example.com", "example.com", true},
		{"http://localhost:5173", "example.com", true},
		{"http://127.0.0.1:3000", "example.com", true},
		{"http://[::1]:3000", "example.com", true},
		{"http://evil.test", "example.com", false},
		{"://bad", "example.com", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = tt.host
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := checkOrigin(r); got != tt.want {
			t.Errorf("checkOrigin(%q, host %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
		}
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ListenAndServe(ctx, "127.0.0.1:0", http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return")
	}
}
