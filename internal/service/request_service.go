package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("user %d", userID)
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.BadRequestf("request description must not be blank")
	}

	request := &models.ItemRequest{Description: description, RequesterID: userID}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ListOwn returns the caller's requests, newest first, with the items
// created against each of them.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequestDetails, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("user %d", userID)
	}

	requests, err := s.repo.ListRequestsByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests)
}

// ListAll returns other users' requests, newest first, paginated.
func (s *RequestService) ListAll(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestDetails, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("user %d", userID)
	}
	if from < 0 || size <= 0 {
		return nil, domain.BadRequestf("invalid pagination: from=%d size=%d", from, size)
	}

	requests, err := s.repo.ListRequestsExcludingRequester(ctx, userID, from, size)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestDetails, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("user %d", userID)
	}

	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.NotFoundf("request %d", requestID)
	}

	details, err := s.enrich(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *RequestService) enrich(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestDetails, error) {
	details := make([]*models.ItemRequestDetails, 0, len(requests))
	for _, request := range requests {
		items, err := s.repo.ListItemsByRequest(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, &models.ItemRequestDetails{ItemRequest: *request, Items: items})
	}
	return details, nil
}
