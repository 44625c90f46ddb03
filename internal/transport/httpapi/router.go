// Package httpapi exposes a Facade over HTTP: the four OPAQUE handshake
// endpoints and the two vault endpoints, header extraction, and the
// domain-error-to-status-code mapping.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Facade is the subset of *domain.Facade the HTTP layer calls.
type Facade interface {
	StartServerRegistration(username string, clientMessage []byte) ([]byte, error)
	FinishServerRegistration(username string, clientMessage []byte) error
	StartServerLogin(username string, clientMessage []byte) ([]byte, error)
	FinishServerLogin(username string, clientMessage []byte) error
	GetVault(bearerToken, verb, uri, timestamp, signature string) ([]byte, error)
	SaveVault(bearerToken, verb, uri, timestamp, signature string, vault []byte) error
}

// NewRouter returns a chi.Router exposing facade's operations, logging
// every request through logger.
func NewRouter(facade Facade, logger zerolog.Logger) chi.Router {
	h := &handlers{facade: facade}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("request_id", "X-Request-Id"))
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/opaque/registration/start", h.registrationStart)
	r.Post("/opaque/registration/finish", h.registrationFinish)
	r.Post("/opaque/login/start", h.loginStart)
	r.Post("/opaque/login/finish", h.loginFinish)
	r.Get("/vault", h.getVault)
	r.Post("/vault", h.saveVault)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(next)
}
