package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/service"

	"github.com/rs/zerolog"
)

// Server exposes the backend HTTP API.
type Server struct {
	cfg      config.ServerConfig
	users    *service.UserService
	items    *service.ItemService
	bookings *service.BookingService
	requests *service.RequestService
	logger   *zerolog.Logger
	server   *http.Server
}

func NewServer(
	cfg config.ServerConfig,
	users *service.UserService,
	items *service.ItemService,
	bookings *service.BookingService,
	requests *service.RequestService,
	logger *zerolog.Logger,
) *Server {
	srv := &Server{
		cfg:      cfg,
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		logger:   logger,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutMS) * time.Millisecond,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutMS) * time.Millisecond,
	}

	return srv
}

// Handler builds the routed handler; exported for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/users", s.handleUsers)
	mux.HandleFunc("/users/", s.handleUserByID)
	mux.HandleFunc("/items", s.handleItems)
	mux.HandleFunc("/items/search", s.handleItemSearch)
	mux.HandleFunc("/items/", s.handleItemByID)
	mux.HandleFunc("/bookings", s.handleBookings)
	mux.HandleFunc("/bookings/owner", s.handleBookingsByOwner)
	mux.HandleFunc("/bookings/", s.handleBookingByID)
	mux.HandleFunc("/requests", s.handleRequests)
	mux.HandleFunc("/requests/all", s.handleRequestsAll)
	mux.HandleFunc("/requests/", s.handleRequestByID)
	mux.HandleFunc("/admin/export", s.handleExport)

	return requestIDMiddleware(loggingMiddleware(s.logger, mux))
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("backend API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
