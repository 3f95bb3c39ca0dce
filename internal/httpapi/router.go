// Package httpapi wires the HTTP surface of the server.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"

	"redhanded/internal/auth"
	"redhanded/internal/codec"
	"redhanded/internal/gateway"
	"redhanded/internal/ledger"
	"redhanded/internal/lobby"
)

const maxBodyBytes = 4096

type Server struct {
	lobby   *lobby.Lobby
	ledger  ledger.Service
	gateway *gateway.Gateway
	log     logrus.FieldLogger
}

type errorResponse struct {
	Error string `json:"error"`
}

type passcodeRequest struct {
	Passcode string `json:"passcode"`
}

type createRoomResponse struct {
	RoomID    string `json:"roomId"`
	HostToken string `json:"hostToken"`
}

type hostLoginResponse struct {
	HostToken string `json:"hostToken"`
}

func New(lby *lobby.Lobby, ledgerService ledger.Service, gw *gateway.Gateway, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{lobby: lby, ledger: ledgerService, gateway: gw, log: log.WithField("component", "http")}
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/api/rooms", s.handleListRooms)
	r.Post("/api/rooms", s.handleCreateRoom)
	r.Post("/api/rooms/{id}/host", s.handleHostLogin)
	r.Get("/api/rooms/{id}/snapshot", s.handleSnapshot)
	if s.ledger != nil {
		ledger.NewHTTPHandler(s.ledger).RegisterRoutes(r)
	}
	if s.gateway != nil {
		r.Get("/ws", s.gateway.HandleWebSocket)
	}
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
			"request":  middleware.GetReqID(r.Context()),
		}).Debug("http request")
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.lobby.List()})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req passcodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	roomID, token, err := s.lobby.CreateRoom(req.Passcode)
	switch {
	case errors.Is(err, auth.ErrInvalidPasscode):
		writeError(w, http.StatusBadRequest, "passcode must be 4 to 72 characters")
		return
	case errors.Is(err, lobby.ErrTooManyRooms):
		writeError(w, http.StatusServiceUnavailable, "too many rooms")
		return
	case err != nil:
		s.log.WithError(err).Error("create room failed")
		writeError(w, http.StatusInternalServerError, "create room failed")
		return
	}
	writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: roomID, HostToken: token})
}

func (s *Server) handleHostLogin(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(chi.URLParam(r, "id"))
	var req passcodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, err := s.lobby.HostLogin(roomID, req.Passcode)
	switch {
	case errors.Is(err, lobby.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid passcode")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "host login failed")
		return
	}
	writeJSON(w, http.StatusOK, hostLoginResponse{HostToken: token})
}

// handleSnapshot serves the presenter view: no hand is visible before the
// results phase.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	rm := s.lobby.Get(strings.TrimSpace(chi.URLParam(r, "id")))
	if rm == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	controller, _ := rm.Controller()
	data, err := codec.SnapshotStruct(rm.Snapshot().Redacted(""), controller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode snapshot failed")
		return
	}
	raw, err := protojson.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode snapshot failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
