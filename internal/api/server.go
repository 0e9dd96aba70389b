package api

import (
	"net/http"
	"time"

	chatapi "github.com/futig/rag-chat/internal/api/chat"
	"github.com/futig/rag-chat/internal/api/docs"
	"github.com/futig/rag-chat/internal/api/middleware"
	"github.com/futig/rag-chat/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestTimeout covers embedding, search and completion of one turn.
const RequestTimeout = 180 * time.Second

// SetupRouter creates and configures the HTTP router
func SetupRouter(chatHandler *chatapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	docs.RegisterRoutes(r)

	chatapi.RegisterRoutes(r, chatHandler)

	return r
}
