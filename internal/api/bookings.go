package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/models"
)

type createBookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r, false)
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	s.listBookings(w, r, true)
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.Create(r.Context(), userID, req.ItemID, req.Start, req.End)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, byOwner bool) {
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

	state := r.URL.Query().Get("state")
	if state == "" {
		state = models.StateAll
	}

	var bookings []*models.Booking
	if byOwner {
		bookings, err = s.bookings.ListByOwner(r.Context(), userID, state, from, size)
	} else {
		bookings, err = s.bookings.ListByBooker(r.Context(), userID, state, from, size)
	}
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bookings/")
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	userID, err := userIDFrom(r)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	bookingID, err := idFromPath(rest)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, err := s.bookings.Get(r.Context(), userID, bookingID)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodPatch:
		approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "approved param must be true or false")
			return
		}
		booking, err := s.bookings.Approve(r.Context(), userID, bookingID, approved)
		if err != nil {
			writeDomainError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}
