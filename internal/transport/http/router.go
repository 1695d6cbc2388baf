package http

import (
	"net/http"
	"time"

	"github.com/DanteBelNan/sockets-server/internal/auth"
	httpmw "github.com/DanteBelNan/sockets-server/internal/transport/http/middleware"
	"github.com/DanteBelNan/sockets-server/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, verifier auth.Verifier, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS namespaces; token is checked during the handshake
	r.Get("/ws/chat", wsServer.HandleGeneralWS)
	r.Get("/ws/private", wsServer.HandlePrivateWS)

	// REST surface requires a bearer token
	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(verifier))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/api", func(api chi.Router) {
			api.Get("/rooms", h.ListRooms)
			api.Get("/rooms/{id}/messages", h.GetMessages)
			api.Post("/messages", h.SendMessage)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
