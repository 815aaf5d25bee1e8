package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetRequest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	requester := createTestUser(t, db, "Alice", "alice@example.com")

	request := &models.ItemRequest{Description: "need a ladder", RequesterID: requester.ID}
	require.NoError(t, db.CreateRequest(ctx, request))
	assert.Positive(t, request.ID)

	got, err := db.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "need a ladder", got.Description)
	assert.Equal(t, requester.ID, got.RequesterID)

	t.Run("missing request returns nil", func(t *testing.T) {
		got, err := db.GetRequest(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestListRequestsByRequester(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	first := &models.ItemRequest{Description: "first", RequesterID: alice.ID}
	require.NoError(t, db.CreateRequest(ctx, first))
	second := &models.ItemRequest{Description: "second", RequesterID: alice.ID}
	require.NoError(t, db.CreateRequest(ctx, second))
	other := &models.ItemRequest{Description: "other", RequesterID: bob.ID}
	require.NoError(t, db.CreateRequest(ctx, other))

	requests, err := db.ListRequestsByRequester(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, second.ID, requests[0].ID)
	assert.Equal(t, first.ID, requests[1].ID)
}

func TestListRequestsExcludingRequester(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	mine := &models.ItemRequest{Description: "mine", RequesterID: alice.ID}
	require.NoError(t, db.CreateRequest(ctx, mine))

	var bobIDs []int64
	for i := 0; i < 12; i++ {
		r := &models.ItemRequest{Description: "bob's", RequesterID: bob.ID}
		require.NoError(t, db.CreateRequest(ctx, r))
		bobIDs = append(bobIDs, r.ID)
	}

	t.Run("excludes own requests", func(t *testing.T) {
		requests, err := db.ListRequestsExcludingRequester(ctx, alice.ID, 0, 100)
		require.NoError(t, err)
		require.Len(t, requests, 12)
		for _, r := range requests {
			assert.Equal(t, bob.ID, r.RequesterID)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		requests, err := db.ListRequestsExcludingRequester(ctx, alice.ID, 0, 10)
		require.NoError(t, err)
		assert.Len(t, requests, 10)

		rest, err := db.ListRequestsExcludingRequester(ctx, alice.ID, 10, 10)
		require.NoError(t, err)
		assert.Len(t, rest, 2)
	})
}
