package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/coursedesk/backend/internal/handler/chat"
	courseHandler "github.com/coursedesk/backend/internal/handler/course"
	"github.com/coursedesk/backend/internal/handler/snapshot"
	middlewarePkg "github.com/coursedesk/backend/internal/middleware"
	"github.com/coursedesk/backend/internal/model/registry"
	chatService "github.com/coursedesk/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to core services. advisorSvc may be nil when
// the chat model is not configured; the conversation endpoint then degrades
// to 503 while the read-only endpoints keep working.
func NewRouter(store *registry.Store, chatSvc *chatService.Service, advisorSvc chatHandler.Advisor) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	conversations := chatHandler.New(chatSvc, advisorSvc)
	catalog := courseHandler.New(store)
	snapshots := snapshot.New(store, chatSvc)

	r.Route("/api", func(api chi.Router) {
		conversations.RegisterRoutes(api)
		catalog.RegisterRoutes(api)
		snapshots.RegisterRoutes(api)
	})

	return r
}
