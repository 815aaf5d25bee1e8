package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const userHeader = "X-Sharer-User-Id"

const requestIDHeader = "X-Request-Id"

// Global inbound guard, on top of the per-user window counters.
const (
	globalRateLimit = 200
	globalRateBurst = 400
)

// Server is the validating edge in front of the backend API. It checks
// headers, bodies and query parameters, throttles callers and forwards
// everything that passes.
type Server struct {
	cfg     config.GatewayConfig
	client  *Client
	state   domain.StateRepository
	logger  *zerolog.Logger
	limiter *rate.Limiter
	server  *http.Server
	now     func() time.Time
}

func NewServer(cfg config.GatewayConfig, client *Client, state domain.StateRepository, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		client:  client,
		state:   state,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(globalRateLimit), globalRateBurst),
		now:     time.Now,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

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
	return s.requestIDMiddleware(s.throttleMiddleware(s.loggingMiddleware(mux)))
}

func (s *Server) Start() error {
	s.logger.Info().Int("port", s.cfg.Port).Str("backend", s.cfg.BackendURL).Msg("starting gateway")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		if err := validateCreateUser(body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.forward(w, r, body)
	case http.MethodGet:
		s.forward(w, r, nil)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodDelete:
		s.forward(w, r, nil)
	case http.MethodPatch:
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		if err := validatePatchUser(body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.forward(w, r, body)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	switch r.Method {
	case http.MethodPost:
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		if err := validateCreateItem(body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.forward(w, r, body)
	case http.MethodGet:
		if !s.checkPageParams(w, r) {
			return
		}
		s.forward(w, r, nil)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleItemSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if !s.checkPageParams(w, r) {
		return
	}
	s.forward(w, r, nil)
}

func (s *Server) handleItemByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/items/")
	if sub, found := strings.CutSuffix(rest, "/comment"); found {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		if _, err := strconv.ParseInt(sub, 10, 64); err != nil {
			writeError(w, http.StatusNotFound, "not_found", "item not found")
			return
		}
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		if err := validateCreateComment(body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.forward(w, r, body)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.forward(w, r, nil)
	case http.MethodPatch:
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		if err := validatePatchItem(body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.forward(w, r, body)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	switch r.Method {
	case http.MethodPost:
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		if err := validateCreateBooking(body, s.now()); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.forward(w, r, body)
	case http.MethodGet:
		if !s.checkListParams(w, r) {
			return
		}
		s.forward(w, r, nil)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if !s.checkListParams(w, r) {
		return
	}
	s.forward(w, r, nil)
}

func (s *Server) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.forward(w, r, nil)
	case http.MethodPatch:
		if raw := r.URL.Query().Get("approved"); raw == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "approved query parameter is required")
			return
		} else if _, err := strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid approved param: %q", raw))
			return
		}
		s.forward(w, r, nil)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	switch r.Method {
	case http.MethodPost:
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		if err := validateCreateRequest(body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		s.forward(w, r, body)
	case http.MethodGet:
		s.forward(w, r, nil)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleRequestsAll(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if !s.checkPageParams(w, r) {
		return
	}
	s.forward(w, r, nil)
}

func (s *Server) handleRequestByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	s.forward(w, r, nil)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireUser(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	s.forward(w, r, nil)
}

// forward replays the request upstream and relays the reply untouched.
// Upstream errors with an empty body get a synthetic message so clients
// always receive a JSON error shape.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	resp, err := s.client.Forward(
		r.Context(),
		r.Method,
		r.URL.RequestURI(),
		r.Header.Get(userHeader),
		r.Header.Get(requestIDHeader),
		body,
	)
	if err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream unavailable")
		writeError(w, http.StatusBadGateway, "bad_gateway", "upstream unavailable")
		return
	}

	if resp.Status >= http.StatusBadRequest && len(strings.TrimSpace(string(resp.Body))) == 0 {
		writeError(w, resp.Status, "upstream_error", "empty response from upstream")
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read request body")
		return nil, false
	}
	return body, true
}

// requireUser checks that the sharer header carries a positive integer
// id. It does not check the user exists, the backend does that.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) bool {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("missing %s header", userHeader))
		return false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid %s header: %q", userHeader, raw))
		return false
	}
	return true
}

func (s *Server) checkPageParams(w http.ResponseWriter, r *http.Request) bool {
	from, size := 0, models.DefaultPageSize
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid from param: %q", raw))
			return false
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid size param: %q", raw))
			return false
		}
		size = parsed
	}
	if from < 0 || size <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid pagination: from=%d size=%d", from, size))
		return false
	}
	return true
}

func (s *Server) checkListParams(w http.ResponseWriter, r *http.Request) bool {
	if !s.checkPageParams(w, r) {
		return false
	}
	if state := r.URL.Query().Get("state"); state != "" && !models.ValidState(state) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown state: %s", state))
		return false
	}
	return true
}

func (s *Server) throttleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too_many_requests", "gateway is overloaded, retry later")
			return
		}

		if s.state != nil && s.cfg.RateLimit.Requests > 0 {
			window := time.Duration(s.cfg.RateLimit.WindowSeconds) * time.Second
			allowed, err := s.state.CheckRateLimit(r.Context(), s.throttleKey(r), s.cfg.RateLimit.Requests, window)
			if err != nil {
				// Fail open, the backend still enforces its own limits.
				s.logger.Error().Err(err).Msg("rate limit check failed")
			} else if !allowed {
				writeError(w, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// throttleKey buckets by user id when the header is present, else by
// remote address.
func (s *Server) throttleKey(r *http.Request) string {
	if id := r.Header.Get(userHeader); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", recorder.Header().Get(requestIDHeader)).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("gateway request")
	})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
