package replication

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestRouter_Status(t *testing.T) {
	h := NewHub(1)
	h.clients[&client{send: make(chan []byte, 1)}] = struct{}{}
	if err := h.Broadcast("a"); err != nil {
		t.Fatal(err)
	}
	if err := h.Broadcast("b"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var got Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Clients != 1 || got.Dropped != 1 {
		t.Errorf("status = %+v, want 1 client and 1 drop", got)
	}
}

func TestRouter_StatusRejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(NewHub(1)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d, want 405", rec.Code)
	}
}

func TestRouter_HeatUpgrades(t *testing.T) {
	h := NewHub(1)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/heat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
}
