package api

import (
	"net/http"
	"time"

	"leet2git/internal/api/handler"
	"leet2git/internal/api/middleware"
	"leet2git/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	issuer *security.TokenIssuer,
	dispatcher handler.Dispatcher,
	storage handler.StorageInfoProvider,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(120 * time.Second))

	r.Use(jwtauth.Verifier(issuer.Auth()))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.Authenticator)

		messageHandler := handler.NewMessageHandler(dispatcher)
		v1.Route("/messages", messageHandler.RegisterRoutes)

		storageHandler := handler.NewStorageHandler(storage)
		v1.Route("/storage", storageHandler.RegisterRoutes)
	})

	return r
}
