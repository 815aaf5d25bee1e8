package api

import (
	"fmt"
	"net/http"
	"time"

	"shareit/internal/export"
)

// handleExport streams an xlsx report of bookings starting inside
// [start, end).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if _, err := userIDFrom(r); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}

	bookings, err := s.bookings.ListInRange(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	file, err := export.BuildBookingsReport(bookings, start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("build export report")
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	defer file.Close()

	fileName := fmt.Sprintf("bookings_%s_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := file.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write export report")
	}
}
