package datastore

import (
	"context"
	"sync"
	"testing"
	"time"

	"flashplan/models"
	"flashplan/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T) (*MembershipRepository, *models.Plan, func() (int, int)) {
	t.Helper()
	dbConn := testutil.NewDB(t)
	testutil.InsertUser(t, dbConn, "u1", "a@b.com")
	testutil.InsertPlans(t, dbConn, testutil.SamplePlans()...)

	plan, err := NewPlanRepository(dbConn).GetByID(context.Background(), "1")
	require.NoError(t, err)

	counters := func() (int, int) { return testutil.Counters(t, dbConn, "u1") }
	return NewMembershipRepository(dbConn), plan, counters
}

func TestJoin_IncrementsCountersOnce(t *testing.T) {
	ctx := context.Background()
	ledger, plan, counters := setupLedger(t)

	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), nil))

	err := ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), nil)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	total, upcoming := counters()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, upcoming)
}

func TestJoin_WritesNoticeInSameTransaction(t *testing.T) {
	ctx := context.Background()
	dbConn := testutil.NewDB(t)
	testutil.InsertUser(t, dbConn, "u1", "a@b.com")
	testutil.InsertPlans(t, dbConn, testutil.SamplePlans()...)
	ledger := NewMembershipRepository(dbConn)
	notifications := NewNotificationRepository(dbConn)
	plan := &testutil.SamplePlans()[0]

	notice := &models.Notification{ID: "n1", UserID: "u1", Type: models.NotificationPlan, Title: "t", CreatedAt: time.Now().UTC()}
	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), notice))

	// the duplicate join must not leave a second notice behind
	dup := &models.Notification{ID: "n2", UserID: "u1", Type: models.NotificationPlan, Title: "t", CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), dup), ErrAlreadyJoined)

	list, err := notifications.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "n1", list[0].ID)
}

func TestJoin_UnknownUser(t *testing.T) {
	ctx := context.Background()
	ledger, plan, _ := setupLedger(t)

	err := ledger.Join(ctx, models.NewMembership("ghost", plan, time.Now().UTC()), nil)
	assert.Error(t, err)

	list, err := ledger.ListForUser(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestJoin_ConcurrentSamePairOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	ledger, plan, counters := setupLedger(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), nil)
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				successes++
			case ErrAlreadyJoined:
				conflicts++
			default:
				t.Errorf("unexpected join error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	total, upcoming := counters()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, upcoming)
}

func TestSetStatus_Lifecycle(t *testing.T) {
	ctx := context.Background()
	ledger, plan, counters := setupLedger(t)
	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), nil))

	require.NoError(t, ledger.SetStatus(ctx, "u1", "1", models.StatusCompleted))
	total, upcoming := counters()
	assert.Equal(t, 1, total)
	assert.Equal(t, 0, upcoming)

	// repeated completion is idempotent and never drives the counter negative
	require.NoError(t, ledger.SetStatus(ctx, "u1", "1", models.StatusCompleted))
	total, upcoming = counters()
	assert.Equal(t, 1, total)
	assert.Equal(t, 0, upcoming)

	assert.ErrorIs(t, ledger.SetStatus(ctx, "u1", "1", models.StatusUpcoming), ErrInvalidTransition)

	list, err := ledger.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusCompleted, list[0].Status)
}

func TestSetStatus_NotJoined(t *testing.T) {
	ledger, _, _ := setupLedger(t)
	err := ledger.SetStatus(context.Background(), "u1", "2", models.StatusCompleted)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestCancel_RestoresCounters(t *testing.T) {
	ctx := context.Background()
	ledger, plan, counters := setupLedger(t)

	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), nil))
	removed, err := ledger.Cancel(ctx, "u1", "1")
	require.NoError(t, err)
	assert.True(t, removed)

	total, upcoming := counters()
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, upcoming)
}

func TestCancel_CompletedOnlyDecrementsTotal(t *testing.T) {
	ctx := context.Background()
	ledger, plan, counters := setupLedger(t)
	second := testutil.SamplePlans()[1]

	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), nil))
	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", &second, time.Now().UTC()), nil))
	require.NoError(t, ledger.SetStatus(ctx, "u1", "1", models.StatusCompleted))

	_, err := ledger.Cancel(ctx, "u1", "1")
	require.NoError(t, err)

	total, upcoming := counters()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, upcoming)
}

func TestCancel_NeverJoinedIsNoop(t *testing.T) {
	ctx := context.Background()
	ledger, plan, counters := setupLedger(t)
	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", plan, time.Now().UTC()), nil))

	removed, err := ledger.Cancel(ctx, "u1", "3")
	require.NoError(t, err)
	assert.False(t, removed)

	total, upcoming := counters()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, upcoming)
}

func TestListForUser_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := setupLedger(t)
	plans := testutil.SamplePlans()
	base := time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", &plans[0], base), nil))
	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", &plans[2], base.Add(2*time.Minute)), nil))
	require.NoError(t, ledger.Join(ctx, models.NewMembership("u1", &plans[1], base.Add(time.Minute)), nil))

	list, err := ledger.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{list[0].PlanID, list[1].PlanID, list[2].PlanID})
	assert.Equal(t, "Escape Room Espacial", list[0].Title)
	assert.Equal(t, models.StatusUpcoming, list[0].Status)
}
