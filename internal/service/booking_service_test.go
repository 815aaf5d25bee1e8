package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(t *testing.T, repo domain.Repository) (*BookingService, *eventRecorder) {
	t.Helper()

	bus := events.NewEventBus()
	recorder := &eventRecorder{}
	for _, eventType := range []string{events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected} {
		bus.Subscribe(eventType, recorder.record)
	}

	svc := NewBookingService(repo, bus, nopLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, recorder
}

type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) record(event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, event.Type)
	return nil
}

func (r *eventRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

func TestBookingService_Create(t *testing.T) {
	db := newTestRepo(t)
	svc, recorder := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)
	unavailable := seedItem(t, db, owner.ID, "Saw", false)

	t.Run("creates waiting booking", func(t *testing.T) {
		booking, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, booking.Status)
		assert.Positive(t, booking.ID)
		assert.Contains(t, recorder.recorded(), events.EventBookingCreated)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Create(ctx, 9999, item.ID, at(24), at(48))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.Create(ctx, booker.ID, 9999, at(24), at(48))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("owner cannot book own item", func(t *testing.T) {
		// Reported as missing rather than forbidden.
		_, err := svc.Create(ctx, owner.ID, item.ID, at(24), at(48))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unavailable item", func(t *testing.T) {
		_, err := svc.Create(ctx, booker.ID, unavailable.ID, at(24), at(48))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("start must precede end", func(t *testing.T) {
		_, err := svc.Create(ctx, booker.ID, item.ID, at(48), at(24))
		assert.ErrorIs(t, err, domain.ErrBadRequest)

		_, err = svc.Create(ctx, booker.ID, item.ID, at(24), at(24))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("end must not be in the past", func(t *testing.T) {
		_, err := svc.Create(ctx, booker.ID, item.ID, at(-48), at(-24))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})
}

func TestBookingService_CreateConflict(t *testing.T) {
	db := newTestRepo(t)
	svc, _ := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	other := seedUser(t, db, "Carol", "carol@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	booking, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, owner.ID, booking.ID, true)
	require.NoError(t, err)

	t.Run("overlap with approved booking is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, other.ID, item.ID, at(36), at(60))
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("waiting bookings do not block", func(t *testing.T) {
		first, err := svc.Create(ctx, other.ID, item.ID, at(72), at(96))
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, first.Status)

		second, err := svc.Create(ctx, booker.ID, item.ID, at(72), at(96))
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, second.Status)
	})

	t.Run("disjoint interval is accepted", func(t *testing.T) {
		booking, err := svc.Create(ctx, other.ID, item.ID, at(120), at(144))
		require.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, booking.Status)
	})
}

func TestBookingService_Approve(t *testing.T) {
	db := newTestRepo(t)
	svc, recorder := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	stranger := seedUser(t, db, "Carol", "carol@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	t.Run("approve", func(t *testing.T) {
		booking, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
		require.NoError(t, err)

		decided, err := svc.Approve(ctx, owner.ID, booking.ID, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, decided.Status)
		assert.Contains(t, recorder.recorded(), events.EventBookingApproved)
	})

	t.Run("reject", func(t *testing.T) {
		booking, err := svc.Create(ctx, booker.ID, item.ID, at(72), at(96))
		require.NoError(t, err)

		decided, err := svc.Approve(ctx, owner.ID, booking.ID, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, decided.Status)
		assert.Contains(t, recorder.recorded(), events.EventBookingRejected)
	})

	t.Run("only the owner decides", func(t *testing.T) {
		booking, err := svc.Create(ctx, booker.ID, item.ID, at(120), at(144))
		require.NoError(t, err)

		_, err = svc.Approve(ctx, stranger.ID, booking.ID, true)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = svc.Approve(ctx, booker.ID, booking.ID, true)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("already decided", func(t *testing.T) {
		booking, err := svc.Create(ctx, booker.ID, item.ID, at(168), at(192))
		require.NoError(t, err)

		_, err = svc.Approve(ctx, owner.ID, booking.ID, false)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, owner.ID, booking.ID, true)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := svc.Approve(ctx, owner.ID, 9999, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// Two overlapping WAITING bookings can coexist, but only the first
// approval goes through.
func TestBookingService_FirstApprovalWins(t *testing.T) {
	db := newTestRepo(t)
	svc, _ := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")
	carol := seedUser(t, db, "Carol", "carol@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	first, err := svc.Create(ctx, bob.ID, item.ID, at(24), at(72))
	require.NoError(t, err)
	second, err := svc.Create(ctx, carol.ID, item.ID, at(48), at(96))
	require.NoError(t, err)

	decided, err := svc.Approve(ctx, owner.ID, first.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)

	_, err = svc.Approve(ctx, owner.ID, second.ID, true)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	// The losing booking is still WAITING and can be rejected.
	remaining, err := svc.Get(ctx, carol.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, remaining.Status)
}

func TestBookingService_ConcurrentApprovals(t *testing.T) {
	db := newTestRepo(t)
	svc, _ := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	const n = 8
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		booking, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
		require.NoError(t, err)
		ids[i] = booking.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(ctx, owner.ID, ids[i], true)
		}(i)
	}
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
		} else {
			assert.ErrorIs(t, err, domain.ErrBadRequest)
		}
	}
	assert.Equal(t, 1, approved, "exactly one overlapping approval may succeed")
}

// decisionBarrierRepo holds the first two booking reads at a rendezvous
// so both deciders leave with the same WAITING snapshot before either
// reaches the item guard.
type decisionBarrierRepo struct {
	domain.Repository
	reads   atomic.Int64
	barrier sync.WaitGroup
}

func (r *decisionBarrierRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := r.Repository.GetBooking(ctx, id)
	if r.reads.Add(1) <= 2 {
		r.barrier.Done()
		r.barrier.Wait()
	}
	return booking, err
}

// An approve and a reject racing on one booking must not both succeed,
// even when both observed it WAITING before taking the guard.
func TestBookingService_ConcurrentDecisionsOnOneBooking(t *testing.T) {
	db := newTestRepo(t)
	repo := &decisionBarrierRepo{Repository: db}
	repo.barrier.Add(2)
	svc, _ := newBookingService(t, repo)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	booking, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var approveErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = svc.Approve(ctx, owner.ID, booking.ID, true)
	}()
	go func() {
		defer wg.Done()
		_, rejectErr = svc.Approve(ctx, owner.ID, booking.ID, false)
	}()
	wg.Wait()

	decided := 0
	for _, err := range []error{approveErr, rejectErr} {
		if err == nil {
			decided++
		} else {
			assert.ErrorIs(t, err, domain.ErrBadRequest)
		}
	}
	require.Equal(t, 1, decided, "a booking is decided exactly once")

	final, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	if approveErr == nil {
		assert.Equal(t, models.StatusApproved, final.Status)
	} else {
		assert.Equal(t, models.StatusRejected, final.Status)
	}
}

func TestBookingService_Get(t *testing.T) {
	db := newTestRepo(t)
	svc, _ := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	stranger := seedUser(t, db, "Carol", "carol@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	booking, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
	require.NoError(t, err)

	t.Run("booker sees it", func(t *testing.T) {
		got, err := svc.Get(ctx, booker.ID, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
	})

	t.Run("owner sees it", func(t *testing.T) {
		got, err := svc.Get(ctx, owner.ID, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
	})

	t.Run("stranger does not", func(t *testing.T) {
		_, err := svc.Get(ctx, stranger.ID, booking.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := svc.Get(ctx, booker.ID, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Lists(t *testing.T) {
	db := newTestRepo(t)
	svc, _ := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	booking, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
	require.NoError(t, err)

	t.Run("by booker", func(t *testing.T) {
		bookings, err := svc.ListByBooker(ctx, booker.ID, models.StateAll, 0, 10)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
		assert.Equal(t, booking.ID, bookings[0].ID)
	})

	t.Run("by owner", func(t *testing.T) {
		bookings, err := svc.ListByOwner(ctx, owner.ID, models.StateFuture, 0, 10)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := svc.ListByBooker(ctx, booker.ID, "SOMEDAY", 0, 10)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.ListByBooker(ctx, 9999, models.StateAll, 0, 10)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		_, err := svc.ListByOwner(ctx, owner.ID, models.StateAll, -1, 10)
		assert.ErrorIs(t, err, domain.ErrBadRequest)

		_, err = svc.ListByOwner(ctx, owner.ID, models.StateAll, 0, 0)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})
}

func TestBookingService_ListInRange(t *testing.T) {
	db := newTestRepo(t)
	svc, _ := newBookingService(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "Alice", "alice@example.com")
	booker := seedUser(t, db, "Bob", "bob@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	_, err := svc.Create(ctx, booker.ID, item.ID, at(24), at(48))
	require.NoError(t, err)

	bookings, err := svc.ListInRange(ctx, fixedNow, at(100))
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	t.Run("start must precede end", func(t *testing.T) {
		_, err := svc.ListInRange(ctx, at(100), fixedNow)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})
}
