package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Stores return (nil, nil) when a row is absent; services translate that
// into a not-found error with a message naming the entity.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	ListItemsByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, from, size int) ([]*models.Item, error)
	ListItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ListBookingsByBooker(ctx context.Context, bookerID int64, state string, now time.Time, from, size int) ([]*models.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID int64, state string, now time.Time, from, size int) ([]*models.Booking, error)
	ListApprovedBookings(ctx context.Context, itemID int64) ([]*models.Booking, error)
	HasCompletedBooking(ctx context.Context, userID, itemID int64, before time.Time) (bool, error)
	LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	ListBookingsInRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	ListRequestsExcludingRequester(ctx context.Context, requesterID int64, from, size int) ([]*models.ItemRequest, error)
}

// Repository is the full persistence surface consumed by the services.
type Repository interface {
	UserStore
	ItemStore
	BookingStore
	CommentStore
	RequestStore
}

// EventPublisher fans a domain event out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// StateRepository tracks per-user request counters for gateway throttling.
type StateRepository interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
