package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewItemService(repo domain.Repository, logger *zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, logger: logger, now: time.Now}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	exists, err := s.repo.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("user %d", ownerID)
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, domain.BadRequestf("item name must not be blank")
	}
	if item.RequestID != nil {
		request, err := s.repo.GetRequest(ctx, *item.RequestID)
		if err != nil {
			return nil, err
		}
		if request == nil {
			return nil, domain.NotFoundf("request %d", *item.RequestID)
		}
	}

	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies the non-nil patch fields. Only the owner may mutate.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("item %d", itemID)
	}
	if item.OwnerID != ownerID {
		return nil, domain.Forbiddenf("user %d does not own item %d", ownerID, itemID)
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.BadRequestf("item name must not be blank")
		}
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns the item with its comments. Booking summaries are added
// only for the owner's view.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("item %d", itemID)
	}
	return s.details(ctx, item, userID == item.OwnerID)
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetails, error) {
	exists, err := s.repo.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundf("user %d", ownerID)
	}
	if from < 0 || size <= 0 {
		return nil, domain.BadRequestf("invalid pagination: from=%d size=%d", from, size)
	}

	items, err := s.repo.ListItemsByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item, true)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	if from < 0 || size <= 0 {
		return nil, domain.BadRequestf("invalid pagination: from=%d size=%d", from, size)
	}
	return s.repo.SearchItems(ctx, text, from, size)
}

// AddComment requires the author to have a finished APPROVED booking of
// the item.
func (s *ItemService) AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.BadRequestf("comment text must not be blank")
	}

	author, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, domain.NotFoundf("user %d", userID)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundf("item %d", itemID)
	}

	completed, err := s.repo.HasCompletedBooking(ctx, userID, itemID, s.now())
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, domain.BadRequestf("user %d has no completed booking of item %d", userID, itemID)
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   userID,
		AuthorName: author.Name,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ItemService) details(ctx context.Context, item *models.Item, ownerView bool) (*models.ItemDetails, error) {
	comments, err := s.repo.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	details := &models.ItemDetails{Item: *item, Comments: comments}
	if !ownerView {
		return details, nil
	}

	now := s.now()
	last, err := s.repo.LastBookingForItem(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	next, err := s.repo.NextBookingForItem(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	details.LastBooking = last.Summary()
	details.NextBooking = next.Summary()
	return details, nil
}
