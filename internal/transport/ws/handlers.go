package ws

import (
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"go.uber.org/zap"
)

// sessionQueryParam carries the session id for browsers, which cannot set
// headers on a websocket handshake.
const sessionQueryParam = "session"

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade connection", zap.Error(err))
		return
	}
	sessionID := strings.TrimSpace(r.Header.Get(domain.SessionIdHeader))
	if sessionID == "" {
		sessionID = strings.TrimSpace(r.URL.Query().Get(sessionQueryParam))
	}
	s.logger.Info("new connection",
		zap.String("remote", r.RemoteAddr),
		zap.String("session", sessionID),
	)
	client := newClient(conn, sessionID)
	defer client.Close()
	if err := s.hub.Handle(r.Context(), client); err != nil {
		s.logger.Error("handle connection", zap.Error(err))
	}
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := s.hub.Stats()
	resp := domain.HealthCheckResponse{
		Sessions: stats.Sessions,
		Rollouts: stats.Rollouts,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := jsoniter.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn("encode health check", zap.Error(err))
	}
}
