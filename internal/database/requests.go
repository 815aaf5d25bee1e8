package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (description, requester_id, created_at) VALUES (?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, request.Description, request.RequesterID, now)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.CreatedAt = now
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created_at FROM requests WHERE id = ?`

	var request models.ItemRequest
	err := db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.Description,
		&request.RequesterID,
		&request.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	return &request, nil
}

func (db *DB) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created_at FROM requests
              WHERE requester_id = ?
              ORDER BY created_at DESC, id DESC`
	return db.queryRequests(ctx, query, requesterID)
}

func (db *DB) ListRequestsExcludingRequester(ctx context.Context, requesterID int64, from, size int) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created_at FROM requests
              WHERE requester_id != ?
              ORDER BY created_at DESC, id DESC
              LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, requesterID, size, models.PageOffset(from))
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := []*models.ItemRequest{}
	for rows.Next() {
		var request models.ItemRequest
		err := rows.Scan(
			&request.ID,
			&request.Description,
			&request.RequesterID,
			&request.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
