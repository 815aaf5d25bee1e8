package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemService(t *testing.T, repo domain.Repository) *ItemService {
	t.Helper()

	svc := NewItemService(repo, nopLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestItemService_Create(t *testing.T) {
	db := newTestRepo(t)
	svc := newItemService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")

	t.Run("creates item", func(t *testing.T) {
		item, err := svc.Create(ctx, owner.ID, &models.Item{Name: "Drill", Description: "power drill", Available: true})
		require.NoError(t, err)
		assert.Positive(t, item.ID)
		assert.Equal(t, owner.ID, item.OwnerID)
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := svc.Create(ctx, 9999, &models.Item{Name: "Drill", Available: true})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, &models.Item{Name: "   ", Available: true})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("unknown request reference", func(t *testing.T) {
		missing := int64(9999)
		_, err := svc.Create(ctx, owner.ID, &models.Item{Name: "Drill", Available: true, RequestID: &missing})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemService_Update(t *testing.T) {
	db := newTestRepo(t)
	svc := newItemService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	stranger := seedUser(t, db, "Bob", "bob@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	t.Run("patches only provided fields", func(t *testing.T) {
		available := false
		updated, err := svc.Update(ctx, owner.ID, item.ID, models.ItemPatch{Available: &available})
		require.NoError(t, err)
		assert.Equal(t, "Drill", updated.Name)
		assert.False(t, updated.Available)

		name := "Hammer drill"
		updated, err = svc.Update(ctx, owner.ID, item.ID, models.ItemPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Hammer drill", updated.Name)
		assert.False(t, updated.Available)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		name := "Stolen drill"
		_, err := svc.Update(ctx, stranger.ID, item.ID, models.ItemPatch{Name: &name})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		name := ""
		_, err := svc.Update(ctx, owner.ID, item.ID, models.ItemPatch{Name: &name})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("unknown item", func(t *testing.T) {
		name := "x"
		_, err := svc.Update(ctx, owner.ID, 9999, models.ItemPatch{Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemService_Get(t *testing.T) {
	db := newTestRepo(t)
	svc := newItemService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	// One finished and one upcoming approved booking.
	past := &models.Booking{ItemID: item.ID, BookerID: booker.ID, Start: at(-72), End: at(-24), Status: models.StatusApproved}
	require.NoError(t, db.CreateBooking(ctx, past))
	future := &models.Booking{ItemID: item.ID, BookerID: booker.ID, Start: at(24), End: at(48), Status: models.StatusApproved}
	require.NoError(t, db.CreateBooking(ctx, future))

	t.Run("owner view carries booking summaries", func(t *testing.T) {
		details, err := svc.Get(ctx, owner.ID, item.ID)
		require.NoError(t, err)
		require.NotNil(t, details.LastBooking)
		require.NotNil(t, details.NextBooking)
		assert.Equal(t, past.ID, details.LastBooking.ID)
		assert.Equal(t, future.ID, details.NextBooking.ID)
		assert.Equal(t, booker.ID, details.LastBooking.BookerID)
	})

	t.Run("non-owner view hides booking summaries", func(t *testing.T) {
		details, err := svc.Get(ctx, booker.ID, item.ID)
		require.NoError(t, err)
		assert.Nil(t, details.LastBooking)
		assert.Nil(t, details.NextBooking)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.Get(ctx, owner.ID, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemService_ListByOwner(t *testing.T) {
	db := newTestRepo(t)
	svc := newItemService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	seedItem(t, db, owner.ID, "Drill", true)
	seedItem(t, db, owner.ID, "Saw", true)

	details, err := svc.ListByOwner(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, details, 2)

	t.Run("unknown owner", func(t *testing.T) {
		_, err := svc.ListByOwner(ctx, 9999, 0, 10)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemService_AddComment(t *testing.T) {
	db := newTestRepo(t)
	svc := newItemService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	freeloader := seedUser(t, db, "Carol", "carol@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	finished := &models.Booking{ItemID: item.ID, BookerID: booker.ID, Start: at(-72), End: at(-24), Status: models.StatusApproved}
	require.NoError(t, db.CreateBooking(ctx, finished))

	t.Run("booker with finished booking may comment", func(t *testing.T) {
		comment, err := svc.AddComment(ctx, booker.ID, item.ID, "worked great")
		require.NoError(t, err)
		assert.Positive(t, comment.ID)
		assert.Equal(t, "Bob", comment.AuthorName)

		details, err := svc.Get(ctx, freeloader.ID, item.ID)
		require.NoError(t, err)
		require.Len(t, details.Comments, 1)
		assert.Equal(t, "worked great", details.Comments[0].Text)
	})

	t.Run("no completed booking", func(t *testing.T) {
		_, err := svc.AddComment(ctx, freeloader.ID, item.ID, "never used it")
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("unfinished booking does not qualify", func(t *testing.T) {
		running := &models.Booking{ItemID: item.ID, BookerID: freeloader.ID, Start: at(-1), End: at(1), Status: models.StatusApproved}
		require.NoError(t, db.CreateBooking(ctx, running))

		_, err := svc.AddComment(ctx, freeloader.ID, item.ID, "still using it")
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := svc.AddComment(ctx, booker.ID, item.ID, "  ")
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := svc.AddComment(ctx, 9999, item.ID, "hello")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.AddComment(ctx, booker.ID, 9999, "hello")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemService_Search(t *testing.T) {
	db := newTestRepo(t)
	svc := newItemService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	seedItem(t, db, owner.ID, "Drill", true)

	items, err := svc.Search(ctx, "drill", 0, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	t.Run("blank text returns empty", func(t *testing.T) {
		items, err := svc.Search(ctx, "", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		_, err := svc.Search(ctx, "drill", 0, -1)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})
}
