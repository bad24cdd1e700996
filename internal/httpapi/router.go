// Package httpapi exposes the analysis sessions over HTTP. Handlers stay
// thin: decode, run the operation under the session lock, serialize the
// updated tree view back.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shashguru/gametree/internal/eco"
	"github.com/shashguru/gametree/internal/eval"
	"github.com/shashguru/gametree/internal/oracle"
	"github.com/shashguru/gametree/internal/session"
	"github.com/shashguru/gametree/internal/store"
)

// EvalDefaults are applied when a request omits depth or line count.
type EvalDefaults struct {
	Depth int
	Lines int
}

// Handler carries the wired service components.
type Handler struct {
	reg      *session.Registry
	rules    *oracle.Oracle
	orch     *eval.Orchestrator // nil when evaluation is disabled
	cache    *eval.Cache        // nil when redis is not configured
	games    *store.GameStore
	ecoDB    *eco.Database // nil when no opening data is loaded
	log      zerolog.Logger
	defaults EvalDefaults
}

// NewRouter builds the full HTTP surface.
func NewRouter(log zerolog.Logger, reg *session.Registry, rules *oracle.Oracle,
	orch *eval.Orchestrator, cache *eval.Cache, games *store.GameStore,
	ecoDB *eco.Database, defaults EvalDefaults) http.Handler {

	h := &Handler{
		reg:      reg,
		rules:    rules,
		orch:     orch,
		cache:    cache,
		games:    games,
		ecoDB:    ecoDB,
		log:      log,
		defaults: defaults,
	}
	if orch == nil {
		log.Info().Msg("evaluation disabled - configure an engine or backend URL to enable")
	}

	r := chi.NewRouter()
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(AccessLog(log))
	r.Use(Metrics)

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/debug", middleware.Profiler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/game", h.createGame)
		r.Route("/game/{id}", func(r chi.Router) {
			r.Use(h.withSession)
			r.Get("/tree", h.getTree)
			r.Post("/move", h.postMove)
			r.Post("/navigate", h.postNavigate)
			r.Post("/promote", h.postPromote)
			r.Post("/delete", h.postDelete)
			r.Post("/annotate", h.postAnnotate)
			r.Post("/eval", h.postEval)
			r.Post("/eval/mainline", h.postEvalMainLine)
			r.Delete("/", h.deleteGame)
		})
		r.Get("/eval/status", h.evalStatus)
		r.Get("/cache/stats", h.cacheStats)
		r.Post("/cache/clear", h.cacheClear)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withSession resolves {id} to a live session and stores it in the context.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, ok := h.reg.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown session")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}
