package statusapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kofuk/dnssync/internal/syncer"
	"github.com/labstack/echo/v4"
)

// Store keeps the most recent pass report for the status API.
type Store struct {
	mu   sync.Mutex
	last *syncer.Report
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Set(report *syncer.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = report
}

func (s *Store) Last() *syncer.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Server exposes daemon health and the last pass outcome over HTTP.
type Server struct {
	store  *Store
	engine *echo.Echo
}

func NewServer(store *Store) *Server {
	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true

	server := &Server{
		store:  store,
		engine: engine,
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.ServeHealth)
	s.engine.GET("/status", s.ServeStatus)
}

func (s *Server) ServeHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type providerStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type statusResponse struct {
	RunID      string                    `json:"run_id"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	OK         bool                      `json:"ok"`
	Error      string                    `json:"error,omitempty"`
	IPv4       string                    `json:"ipv4,omitempty"`
	IPv6       string                    `json:"ipv6,omitempty"`
	Providers  map[string]providerStatus `json:"providers"`
}

func (s *Server) ServeStatus(c echo.Context) error {
	report := s.store.Last()
	if report == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no pass completed yet"})
	}

	resp := statusResponse{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		OK:         report.OK(),
		Providers:  make(map[string]providerStatus),
	}
	if err := report.Err(); err != nil {
		resp.Error = err.Error()
	}
	if report.IP.HasV4() {
		resp.IPv4 = report.IP.V4.String()
	}
	if report.IP.HasV6() {
		resp.IPv6 = report.IP.V6.String()
	}
	for name, err := range report.Providers {
		status := providerStatus{OK: err == nil}
		if err != nil {
			status.Error = err.Error()
		}
		resp.Providers[name] = status
	}

	return c.JSON(http.StatusOK, resp)
}

// Handler exposes the routes for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(addr string) error {
	return s.engine.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.engine.Shutdown(ctx)
}
