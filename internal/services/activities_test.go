package services

import (
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-crm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityService_ToggleKeepsTimestampConsistent(t *testing.T) {
	d := openDB(t)
	ctx, _ := signedIn(t, d)
	svc := NewActivityService(d, nil)

	a, err := svc.Create(ctx, ActivityInput{Type: models.ActivityCall, Title: "Follow up"})
	require.NoError(t, err)
	require.False(t, a.Completed)
	require.Nil(t, a.CompletedAt)

	for i := 1; i <= 5; i++ {
		a, err = svc.ToggleComplete(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 1, a.Completed, "toggle %d", i)
		assert.True(t, a.Consistent(), "toggle %d: completed=%v completed_at=%v", i, a.Completed, a.CompletedAt)
	}
}

func TestActivityService_ConcurrentTogglesStayConsistent(t *testing.T) {
	d := openDB(t)
	ctx, _ := signedIn(t, d)
	svc := NewActivityService(d, nil)
	a, err := svc.Create(ctx, ActivityInput{Type: models.ActivityTask, Title: "Race"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ToggleComplete(ctx, a.ID)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed, "an even number of toggles ends open")
	assert.True(t, got.Consistent())
}

func TestActivityService_ToggleMissing(t *testing.T) {
	d := openDB(t)
	ctx, _ := signedIn(t, d)
	_, err := NewActivityService(d, nil).ToggleComplete(ctx, 777)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestActivityService_UpdateCompletion(t *testing.T) {
	d := openDB(t)
	ctx, _ := signedIn(t, d)
	svc := NewActivityService(d, nil)
	stamp := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	a, err := svc.Create(ctx, ActivityInput{Type: models.ActivityMeeting, Title: "Kickoff"})
	require.NoError(t, err)

	a, err = svc.Update(ctx, a.ID, ActivityPatch{Completed: ptr(true)})
	require.NoError(t, err)
	require.True(t, a.Completed)
	require.NotNil(t, a.CompletedAt)
	assert.True(t, stamp.Equal(*a.CompletedAt))

	a, err = svc.Update(ctx, a.ID, ActivityPatch{Completed: ptr(false)})
	require.NoError(t, err)
	assert.False(t, a.Completed)
	assert.Nil(t, a.CompletedAt)
}

func TestActivityService_ListOrder(t *testing.T) {
	d := openDB(t)
	ctx, _ := signedIn(t, d)
	svc := NewActivityService(d, nil)

	done, err := svc.Create(ctx, ActivityInput{Type: models.ActivityNote, Title: "done"})
	require.NoError(t, err)
	_, err = svc.ToggleComplete(ctx, done.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, ActivityInput{Type: models.ActivityNote, Title: "open"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "open", list[0].Title)
	assert.Equal(t, "done", list[1].Title)
	require.NotNil(t, list[0].User)
}

func TestActivityService_CreateValidation(t *testing.T) {
	d := openDB(t)
	ctx, _ := signedIn(t, d)
	_, err := NewActivityService(d, nil).Create(ctx, ActivityInput{Type: "LUNCH"})
	require.ErrorIs(t, err, ErrValidation)
}
