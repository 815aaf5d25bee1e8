package models

import "time"

// ItemRequest is a posted need for an item not currently listed.
type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requester_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemRequestDetails aggregates the items created against a request.
type ItemRequestDetails struct {
	ItemRequest
	Items []*Item `json:"items"`
}
