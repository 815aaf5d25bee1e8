package api

import (
	"net/http"
	"strconv"
	"time"

	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserHeader identifies the calling user on most endpoints.
const UserHeader = "X-Sharer-User-Id"

const requestIDHeader = "X-Request-Id"

func userIDFrom(r *http.Request) (int64, error) {
	raw := r.Header.Get(UserHeader)
	if raw == "" {
		return 0, domain.BadRequestf("missing %s header", UserHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.BadRequestf("invalid %s header: %q", UserHeader, raw)
	}
	return id, nil
}

// pageParams reads from/size with defaults 0 and DefaultPageSize.
func pageParams(r *http.Request) (int, int, error) {
	from := 0
	size := models.DefaultPageSize

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.BadRequestf("invalid from param: %q", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, domain.BadRequestf("invalid size param: %q", raw)
		}
		size = parsed
	}
	if from < 0 || size <= 0 {
		return 0, 0, domain.BadRequestf("invalid pagination: from=%d size=%d", from, size)
	}
	return from, size, nil
}

func idFromPath(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NotFoundf("invalid id in path: %q", raw)
	}
	return id, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", recorder.Header().Get(requestIDHeader)).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// requestIDMiddleware tags each request, generating an id when the
// gateway did not already set one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
