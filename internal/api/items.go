package api

import (
	"net/http"
	"strings"

	"shareit/internal/models"
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"request_id"`
}

type createCommentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createItem(w, r)
	case http.MethodGet:
		s.listItemsByOwner(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if req.Available == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "available is required")
		return
	}

	item, err := s.items.Create(r.Context(), userID, &models.Item{
		Name:        req.Name,
		Description: req.Description,
		Available:   *req.Available,
		RequestID:   req.RequestID,
	})
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) listItemsByOwner(w http.ResponseWriter, r *http.Request) {
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

	items, err := s.items.ListByOwner(r.Context(), userID, from, size)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleItemSearch is open: no user header required.
func (s *Server) handleItemSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	from, size, err := pageParams(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	items, err := s.items.Search(r.Context(), r.URL.Query().Get("text"), from, size)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleItemByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/items/")

	// POST /items/{id}/comment
	if itemIDRaw, ok := strings.CutSuffix(rest, "/comment"); ok {
		s.addComment(w, r, itemIDRaw)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	itemID, err := idFromPath(rest)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		details, err := s.items.Get(r.Context(), userID, itemID)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	case http.MethodPatch:
		var patch models.ItemPatch
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
			return
		}
		item, err := s.items.Update(r.Context(), userID, itemID, patch)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request, itemIDRaw string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	itemID, err := idFromPath(itemIDRaw)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}

	comment, err := s.items.AddComment(r.Context(), userID, itemID, req.Text)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
