package replication

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Status is the body of GET /status.
type Status struct {
	Clients int `json:"clients"`
	Dropped int `json:"dropped"`
}

// NewRouter exposes the hub at /heat and its counters at /status.
func NewRouter(h *Hub) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/heat", h)
	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Status{Clients: h.ClientCount(), Dropped: h.Dropped()})
	}).Methods(http.MethodGet)
	return r
}
