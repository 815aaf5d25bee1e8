package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Request bodies are validated here before a single byte reaches the
// backend, so malformed input never costs an upstream round trip.

type createUserBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type patchUserBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type createItemBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"request_id"`
}

type patchItemBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type createBookingBody struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type createCommentBody struct {
	Text string `json:"text"`
}

type createRequestBody struct {
	Description string `json:"description"`
}

func validateCreateUser(body []byte) error {
	var req createUserBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("user name must not be blank")
	}
	if !validEmail(req.Email) {
		return fmt.Errorf("invalid email: %q", req.Email)
	}
	return nil
}

func validatePatchUser(body []byte) error {
	var req patchUserBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return fmt.Errorf("user name must not be blank")
	}
	if req.Email != nil && !validEmail(*req.Email) {
		return fmt.Errorf("invalid email: %q", *req.Email)
	}
	return nil
}

func validateCreateItem(body []byte) error {
	var req createItemBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("item name must not be blank")
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("item description must not be blank")
	}
	if req.Available == nil {
		return fmt.Errorf("item availability is required")
	}
	return nil
}

func validatePatchItem(body []byte) error {
	var req patchItemBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return fmt.Errorf("item name must not be blank")
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return fmt.Errorf("item description must not be blank")
	}
	return nil
}

func validateCreateBooking(body []byte, now time.Time) error {
	var req createBookingBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if req.ItemID <= 0 {
		return fmt.Errorf("itemId is required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if !req.Start.Before(req.End) {
		return fmt.Errorf("start must be before end")
	}
	if req.End.Before(now) {
		return fmt.Errorf("end must not be in the past")
	}
	return nil
}

func validateCreateComment(body []byte) error {
	var req createCommentBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("comment text must not be blank")
	}
	return nil
}

func validateCreateRequest(body []byte) error {
	var req createRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("request description must not be blank")
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
