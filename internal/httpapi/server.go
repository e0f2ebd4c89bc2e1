package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/surajmandalcell/asrpro-sub001/internal/orchestrator"
	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
// *orchestrator.Orchestrator satisfies it.
type Service interface {
	Catalog() []types.ModelEntry
	Entry(modelID string) (types.ModelEntry, bool)
	GetInstance(modelID string) (orchestrator.Instance, bool)
	InstanceStatus(inst orchestrator.Instance) types.InstanceStatus
	Start(ctx context.Context, modelID string) (orchestrator.Instance, error)
	Stop(ctx context.Context, modelID string) (bool, error)
	Touch(modelID string)
	Snapshot(ctx context.Context) types.StatusResponse
	Ready(ctx context.Context) bool
}

// NewMux builds the router. hub may be nil, in which case /events is not
// mounted.
func NewMux(svc Service, hub *EventHub) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: modelSummaries(svc)})
	})

	r.Get("/models/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		entry, ok := svc.Entry(id)
		if !ok {
			writeLifecycleError(w, orchestrator.ErrModelNotFound(id))
			return
		}
		writeJSON(w, http.StatusOK, modelSummary(svc, entry))
	})

	r.Post("/models/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		began := time.Now()
		inst, err := svc.Start(ctx, id)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := lifecycleStatus(err)
			countLifecycleError("start", status)
			zlog.Warn().Str("model", id).Int("status", status).
				Dur("dur", time.Since(began)).Err(err).Msg("start rejected")
			writeJSONError(w, status, err.Error())
			return
		}
		zlog.Info().Str("model", id).Dur("dur", time.Since(began)).Msg("start ok")
		writeJSON(w, http.StatusOK, svc.InstanceStatus(inst))
	})

	r.Post("/models/{id}/stop", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		stopped, err := svc.Stop(ctx, id)
		if err != nil {
			status := lifecycleStatus(err)
			countLifecycleError("stop", status)
			zlog.Warn().Str("model", id).Int("status", status).Err(err).Msg("stop failed")
			writeJSONError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, types.StopResponse{Stopped: stopped})
	})

	r.Post("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		handleTranscribe(svc, w, r)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Snapshot(r.Context()))
	})

	if hub != nil {
		r.Get("/events", hub.handleEvents)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready(r.Context()) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("runtime unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func modelSummaries(svc Service) []types.ModelSummary {
	entries := svc.Catalog()
	out := make([]types.ModelSummary, 0, len(entries))
	for _, entry := range entries {
		out = append(out, modelSummary(svc, entry))
	}
	return out
}

func modelSummary(svc Service, entry types.ModelEntry) types.ModelSummary {
	s := types.ModelSummary{ModelEntry: entry}
	if inst, ok := svc.GetInstance(entry.ID); ok {
		st := svc.InstanceStatus(inst)
		s.Instance = &st
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
