package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

// Booking intervals are stored as unix seconds so date predicates stay
// plain integer comparisons.
const bookingColumns = `id, item_id, booker_id, start_ts, end_ts, status, created_at, updated_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_ts, end_ts, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		booking.Start.Unix(),
		booking.End.Unix(),
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return db.queryBooking(ctx, query, id)
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, status, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64, state string, now time.Time, from, size int) ([]*models.Booking, error) {
	predicate, args := statePredicate(state, now, "")
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booker_id = ?` + predicate +
		` ORDER BY start_ts DESC LIMIT ? OFFSET ?`
	args = append([]any{bookerID}, args...)
	args = append(args, size, models.PageOffset(from))
	return db.queryBookings(ctx, query, args...)
}

func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID int64, state string, now time.Time, from, size int) ([]*models.Booking, error) {
	predicate, args := statePredicate(state, now, "b.")
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_ts, b.end_ts, b.status, b.created_at, b.updated_at
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?` + predicate +
		` ORDER BY b.start_ts DESC LIMIT ? OFFSET ?`
	args = append([]any{ownerID}, args...)
	args = append(args, size, models.PageOffset(from))
	return db.queryBookings(ctx, query, args...)
}

// statePredicate builds the extra WHERE clause for a list filter. col
// prefixes column names when bookings are joined under an alias.
func statePredicate(state string, now time.Time, col string) (string, []any) {
	ts := now.Unix()
	switch state {
	case models.StateCurrent:
		return " AND " + col + "start_ts <= ? AND " + col + "end_ts > ?", []any{ts, ts}
	case models.StatePast:
		return " AND " + col + "end_ts < ?", []any{ts}
	case models.StateFuture:
		return " AND " + col + "start_ts > ?", []any{ts}
	case models.StateWaiting:
		return " AND " + col + "status = ?", []any{models.StatusWaiting}
	case models.StateRejected:
		return " AND " + col + "status = ?", []any{models.StatusRejected}
	default: // ALL
		return "", nil
	}
}

// ListApprovedBookings returns every APPROVED booking of an item; the
// caller runs the overlap test under the per-item guard.
func (db *DB) ListApprovedBookings(ctx context.Context, itemID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE item_id = ? AND status = ? ORDER BY start_ts`
	return db.queryBookings(ctx, query, itemID, models.StatusApproved)
}

func (db *DB) HasCompletedBooking(ctx context.Context, userID, itemID int64, before time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE booker_id = ? AND item_id = ? AND status = ? AND end_ts <= ?`
	var count int
	err := db.QueryRowContext(ctx, query, userID, itemID, models.StatusApproved, before.Unix()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}
	return count > 0, nil
}

func (db *DB) LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status = ? AND start_ts <= ?
              ORDER BY start_ts DESC LIMIT 1`
	return db.queryBooking(ctx, query, itemID, models.StatusApproved, now.Unix())
}

func (db *DB) NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND status = ? AND start_ts > ?
              ORDER BY start_ts ASC LIMIT 1`
	return db.queryBooking(ctx, query, itemID, models.StatusApproved, now.Unix())
}

func (db *DB) ListBookingsInRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE start_ts >= ? AND start_ts < ?
              ORDER BY start_ts, id`
	return db.queryBookings(ctx, query, start.Unix(), end.Unix())
}

func (db *DB) queryBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	booking, err := scanBooking(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}
	return booking, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		booking        models.Booking
		startTS, endTS int64
	)
	err := row.Scan(
		&booking.ID,
		&booking.ItemID,
		&booking.BookerID,
		&startTS,
		&endTS,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Start = time.Unix(startTS, 0)
	booking.End = time.Unix(endTS, 0)
	return &booking, nil
}
