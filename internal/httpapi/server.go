package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/httprobe/internal/domain"
	apimw "github.com/hamed0406/httprobe/internal/httpapi/middleware"
	"github.com/hamed0406/httprobe/internal/repo"
	"github.com/hamed0406/httprobe/internal/scheduler"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
)

type Server struct {
	Logger   *zap.Logger
	Probes   *scheduler.Registry
	Alerts   repo.AlertLog
	Gatherer prometheus.Gatherer
}

func NewServer(l *zap.Logger, probes *scheduler.Registry, alerts repo.AlertLog, g prometheus.Gatherer) *Server {
	return &Server{Logger: l, Probes: probes, Alerts: alerts, Gatherer: g}
}

// Router exposes probe status and the alert log. Reads need any API key,
// starting and stopping probes needs an admin key. With no keys configured the
// API is open.
func (s *Server) Router(keys apimw.Keys, publicRPM, publicBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Use(apimw.RequireAny(keys))

		r.Get("/probes", s.handleListProbes)
		r.Get("/probes/{name}", s.handleGetProbe)
		r.Get("/alerts", s.handleListAlerts)

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAdmin(keys))
			r.Post("/probes/{name}/start", s.handleStartProbe)
			r.Post("/probes/{name}/stop", s.handleStopProbe)
		})
	})
	return r
}

func (s *Server) handleListProbes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Probes.Statuses())
}

func (s *Server) handleGetProbe(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Status())
}

func (s *Server) handleStartProbe(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := p.Start(); err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.Logger.Error("probe_start_failed", zap.String("probe", p.Name()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start probe")
		return
	}
	s.Logger.Info("probe_started_via_api", zap.String("probe", p.Name()))
	writeJSON(w, http.StatusOK, p.Status())
}

func (s *Server) handleStopProbe(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	p.Stop()
	s.Logger.Info("probe_stopped_via_api", zap.String("probe", p.Name()))
	writeJSON(w, http.StatusOK, p.Status())
}

// handleListAlerts supports ?probe=<name> and ?limit=<n>.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAlertLimit)
	}

	var (
		alerts []domain.Alert
		err    error
	)
	if name := r.URL.Query().Get("probe"); name != "" {
		alerts, err = s.Alerts.ByProbe(r.Context(), name, limit)
	} else {
		alerts, err = s.Alerts.Recent(r.Context(), limit)
	}
	if err != nil {
		s.Logger.Error("alerts_list_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*scheduler.Probe, bool) {
	p, err := s.Probes.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "probe not found")
		return nil, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
