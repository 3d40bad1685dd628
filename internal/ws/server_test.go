package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netbuddy/netbuddy/internal/report"
)

func newTestServer(t *testing.T, authToken string) (*Server, *report.Store, *httptest.Server) {
	t.Helper()
	store := report.NewStore()
	broadcaster := NewBroadcaster(store, 10*time.Millisecond, time.Hour)
	srv := NewServer(store, broadcaster, 3, nil, authToken)

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return srv, store, ts
}

func dialWS(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return msg
}

func TestWSClientGetsSnapshotOnConnect(t *testing.T) {
	_, store, ts := newTestServer(t, "")
	store.Update(&report.TargetState{Target: "github.com", Online: true})

	conn := dialWS(t, ts, "")

	msg := readMessage(t, conn)
	if msg.Type != MsgSnapshot {
		t.Fatalf("first message type = %q, want %q", msg.Type, MsgSnapshot)
	}
}

func TestWSDeltaAfterQueueUpdate(t *testing.T) {
	srv, _, ts := newTestServer(t, "")
	conn := dialWS(t, ts, "")
	readMessage(t, conn) // join snapshot

	srv.broadcaster.QueueUpdate([]*report.TargetState{
		{Target: "twitter.com", ConsecutiveFailures: 1},
	})

	msg := readMessage(t, conn)
	if msg.Type != MsgDelta {
		t.Fatalf("message type = %q, want %q", msg.Type, MsgDelta)
	}
}

func TestWSSummaryBypassesThrottle(t *testing.T) {
	srv, _, ts := newTestServer(t, "")
	conn := dialWS(t, ts, "")
	readMessage(t, conn) // join snapshot

	srv.broadcaster.BroadcastSummary(3, 4, 75)

	msg := readMessage(t, conn)
	if msg.Type != MsgSummary {
		t.Fatalf("message type = %q, want %q", msg.Type, MsgSummary)
	}

	data, _ := json.Marshal(msg.Payload)
	var payload SummaryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Passed != 3 || payload.Total != 4 || payload.Percent != 75 {
		t.Errorf("summary = %d/%d (%d%%), want 3/4 (75%%)", payload.Passed, payload.Total, payload.Percent)
	}
}

func TestWSAuthToken(t *testing.T) {
	_, _, ts := newTestServer(t, "sekrit")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("dial without token should fail")
	} else if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	conn := dialWS(t, ts, "?token=sekrit")
	readMessage(t, conn) // snapshot proves the upgrade succeeded
}

func TestAuthorize(t *testing.T) {
	srv := NewServer(report.NewStore(), nil, 3, nil, "sekrit")

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  bool
	}{
		{"no credentials", func(r *http.Request) {}, false},
		{"query token", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", "sekrit")
			r.URL.RawQuery = q.Encode()
		}, true},
		{"custom header", func(r *http.Request) {
			r.Header.Set("X-NetBuddy-Token", "sekrit")
		}, true},
		{"bearer token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer sekrit")
		}, true},
		{"wrong token", func(r *http.Request) {
			r.Header.Set("X-NetBuddy-Token", "guess")
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			tt.setup(r)
			if got := srv.authorize(r); got != tt.want {
				t.Errorf("authorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorizeDisabledWithoutToken(t *testing.T) {
	srv := NewServer(report.NewStore(), nil, 3, nil, "")
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if !srv.authorize(r) {
		t.Error("empty configured token should disable auth")
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		host           string
		want           bool
	}{
		{"no origin header", nil, "", "example.com", true},
		{"same host", nil, "http://example.com", "example.com", true},
		{"localhost fallback", nil, "http://localhost:3000", "example.com", true},
		{"loopback fallback", nil, "http://127.0.0.1:3000", "example.com", true},
		{"foreign host rejected", nil, "http://evil.example", "example.com", false},
		{"allowlisted origin", []string{"http://app.example"}, "http://app.example", "example.com", true},
		{"allowlist rejects others", []string{"http://app.example"}, "http://localhost:3000", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(report.NewStore(), nil, 3, tt.allowedOrigins, "")
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := srv.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleTargets(t *testing.T) {
	_, store, ts := newTestServer(t, "")
	store.Update(&report.TargetState{Target: "github.com", Online: true})
	store.Update(&report.TargetState{Target: "twitter.com", ConsecutiveFailures: 5})

	resp, err := http.Get(ts.URL + "/api/targets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	// Status marshals as its string form on the wire.
	var views []struct {
		Target string `json:"target"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d targets, want 2", len(views))
	}
	if views[0].Target != "github.com" || views[0].Status != "online" {
		t.Errorf("views[0] = %+v, want github.com online", views[0])
	}
	if views[1].Target != "twitter.com" || views[1].Status != "offline" {
		t.Errorf("views[1] = %+v, want twitter.com offline", views[1])
	}
}

func TestHandleSummary(t *testing.T) {
	_, store, ts := newTestServer(t, "")
	store.Update(&report.TargetState{Target: "a.example", Online: true})
	store.Update(&report.TargetState{Target: "b.example"})

	resp, err := http.Get(ts.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var payload SummaryPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Passed != 1 || payload.Total != 2 || payload.Percent != 50 {
		t.Errorf("summary = %d/%d (%d%%), want 1/2 (50%%)", payload.Passed, payload.Total, payload.Percent)
	}
}

func TestListenAndServeStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- ListenAndServe(ctx, "127.0.0.1", 0, http.NewServeMux())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("ListenAndServe returned %v after cancel, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestRemoveClientIsIdempotent(t *testing.T) {
	store := report.NewStore()
	b := NewBroadcaster(store, time.Millisecond, time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := b.AddClient(conn)
		b.RemoveClient(c)
		b.RemoveClient(c) // second remove must not panic
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", b.ClientCount())
	}
}
