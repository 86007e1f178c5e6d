package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/room"
	"github.com/voltrace/voltrace/transport/websocket"
)

// Server is the REST API server.
type Server struct {
	rooms   *room.Registry
	hub     *websocket.Hub
	router  *mux.Router
	log     *zap.Logger
	started time.Time
}

// NewServer builds a server over the room registry and websocket hub.
func NewServer(rooms *room.Registry, hub *websocket.Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		rooms:   rooms,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log,
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/catalog/kits", s.handleKits).Methods("GET")
	api.HandleFunc("/catalog/perks", s.handlePerks).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// roomSummary is the list-view row for one room.
type roomSummary struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	Players int    `json:"players"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.rooms.List()
	out := make([]roomSummary, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, roomSummary{
			ID:      rm.ID(),
			State:   rm.State(),
			Players: len(rm.Seats()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rooms": out,
		"count": len(out),
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rm, err := s.rooms.Get(vars["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rm.View())
}

func (s *Server) handleKits(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.Kits())
}

func (s *Server) handlePerks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"basic": catalog.PerksByTier(catalog.TierBasic),
		"mid":   catalog.PerksByTier(catalog.TierMid),
		"high":  catalog.PerksByTier(catalog.TierHigh),
		"packs": []catalog.PerkPackTier{catalog.PackBasic, catalog.PackIntermediate, catalog.PackAdvanced},
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"rooms":   s.rooms.Count(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"service": "voltrace",
	})
}
