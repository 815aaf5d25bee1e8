package models

import "time"

type Booking struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"` // WAITING, APPROVED, REJECTED
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingSummary is the short form attached to item views.
type BookingSummary struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"booker_id"`
}

func (b *Booking) Summary() *BookingSummary {
	if b == nil {
		return nil
	}
	return &BookingSummary{ID: b.ID, BookerID: b.BookerID}
}

// Overlaps reports whether two [start,end) intervals share any instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
