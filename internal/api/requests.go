package api

import (
	"net/http"
	"strings"
)

type createRequestRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req createRequestRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
			return
		}
		request, err := s.requests.Create(r.Context(), userID, req.Description)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, request)
	case http.MethodGet:
		details, err := s.requests.ListOwn(r.Context(), userID)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleRequestsAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	from, size, err := pageParams(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	details, err := s.requests.ListAll(r.Context(), userID, from, size)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleRequestByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/requests/")
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	requestID, err := idFromPath(rest)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	details, err := s.requests.Get(r.Context(), userID, requestID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
