package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/harmonia-api/internal/database"
	"github.com/Conceptual-Machines/harmonia-api/internal/models"
	"github.com/Conceptual-Machines/harmonia-api/internal/srs"
)

var reviewNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupReviewService(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	db, err := database.Connect("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	svc := NewReviewService(db)
	svc.now = func() time.Time { return reviewNow }
	return svc, db
}

func seedProgress(t *testing.T, db *gorm.DB, userID, exerciseID string, next time.Time, interval int) {
	t.Helper()
	p := models.NewExerciseProgress(userID, exerciseID, next)
	p.IntervalDays = interval
	p.Repetitions = 1
	require.NoError(t, db.Create(p).Error)
}

func TestReviewService_MarkReviewed_CreatesAndAdvances(t *testing.T) {
	svc, db := setupReviewService(t)
	ctx := context.Background()

	first, err := svc.MarkReviewed(ctx, "user-1", "ii-V-I", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, first.IntervalDays)
	assert.Equal(t, 1, first.Repetitions)
	assert.Equal(t, 1, first.TimesPracticed)
	assert.Equal(t, srs.QualityDescription(5), first.QualityDescription)
	assert.Equal(t, reviewNow.Add(24*time.Hour).Format(time.RFC3339), first.NextReviewAt)

	second, err := svc.MarkReviewed(ctx, "user-1", "ii-V-I", 5)
	require.NoError(t, err)
	assert.Equal(t, 6, second.IntervalDays)
	assert.Equal(t, 2, second.Repetitions)
	assert.Equal(t, 2, second.TimesPracticed)

	var stored models.ExerciseProgress
	require.NoError(t, db.Where("user_id = ? AND exercise_id = ?", "user-1", "ii-V-I").First(&stored).Error)
	assert.Equal(t, 6, stored.IntervalDays)
	require.NotNil(t, stored.LastQuality)
	assert.Equal(t, 5, *stored.LastQuality)
	require.NotNil(t, stored.LastReviewedAt)
	assert.True(t, reviewNow.Equal(*stored.LastReviewedAt))
}

func TestReviewService_MarkReviewed_RowInsertedConcurrently(t *testing.T) {
	svc, db := setupReviewService(t)

	// Another writer creates the row right after the first lookup misses
	inserted := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if inserted || tx.Statement.Table != "exercise_progresses" || !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return
		}
		inserted = true
		other := models.NewExerciseProgress("user-1", "rhythm-changes", reviewNow)
		other.Repetitions = 1
		other.TimesPracticed = 1
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(other).Error)
	}))

	resp, err := svc.MarkReviewed(context.Background(), "user-1", "rhythm-changes", 5)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, 6, resp.IntervalDays, "review applies on top of the other writer's row")
	assert.Equal(t, 2, resp.Repetitions)
	assert.Equal(t, 2, resp.TimesPracticed)

	var count int64
	require.NoError(t, db.Model(&models.ExerciseProgress{}).
		Where("user_id = ? AND exercise_id = ?", "user-1", "rhythm-changes").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReviewService_MarkReviewed_FailureResets(t *testing.T) {
	svc, db := setupReviewService(t)
	seedProgress(t, db, "user-1", "blues", reviewNow, 15)

	resp, err := svc.MarkReviewed(context.Background(), "user-1", "blues", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Repetitions)
	assert.Equal(t, 1, resp.IntervalDays)
}

func TestReviewService_MarkReviewed_InvalidQuality(t *testing.T) {
	svc, db := setupReviewService(t)

	_, err := svc.MarkReviewed(context.Background(), "user-1", "blues", 9)
	assert.ErrorIs(t, err, srs.ErrInvalidQuality)

	var count int64
	require.NoError(t, db.Model(&models.ExerciseProgress{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReviewService_DueExercises(t *testing.T) {
	svc, db := setupReviewService(t)
	seedProgress(t, db, "user-1", "recent", reviewNow.Add(-2*time.Hour), 1)
	seedProgress(t, db, "user-1", "oldest", reviewNow.Add(-72*time.Hour), 3)
	seedProgress(t, db, "user-1", "future", reviewNow.Add(48*time.Hour), 6)
	seedProgress(t, db, "user-2", "other-user", reviewNow.Add(-96*time.Hour), 1)

	due, err := svc.DueExercises(context.Background(), "user-1", 0)
	require.NoError(t, err)
	require.Len(t, due, 2)

	assert.Equal(t, "oldest", due[0].ExerciseID)
	assert.Equal(t, 3, due[0].OverdueDays)
	assert.Equal(t, "recent", due[1].ExerciseID)
	assert.Equal(t, 0, due[1].OverdueDays)

	limited, err := svc.DueExercises(context.Background(), "user-1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "oldest", limited[0].ExerciseID)
}

func TestReviewService_UpcomingReviews(t *testing.T) {
	svc, db := setupReviewService(t)
	seedProgress(t, db, "user-1", "a", reviewNow.Add(24*time.Hour), 1)
	seedProgress(t, db, "user-1", "b", reviewNow.Add(25*time.Hour), 1)
	seedProgress(t, db, "user-1", "c", reviewNow.Add(72*time.Hour), 3)
	seedProgress(t, db, "user-1", "past", reviewNow.Add(-time.Hour), 1)
	seedProgress(t, db, "user-1", "far", reviewNow.Add(30*24*time.Hour), 30)

	upcoming, err := svc.UpcomingReviews(context.Background(), "user-1", 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"2026-03-11": 2,
		"2026-03-13": 1,
	}, upcoming)
}

func TestReviewService_Stats(t *testing.T) {
	svc, db := setupReviewService(t)

	empty, err := svc.Stats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, &models.ReviewStats{}, empty)

	seedProgress(t, db, "user-1", "overdue", reviewNow.Add(-48*time.Hour), 2)
	seedProgress(t, db, "user-1", "due-now", reviewNow, 4)
	seedProgress(t, db, "user-1", "this-week", reviewNow.Add(3*24*time.Hour), 6)
	seedProgress(t, db, "user-1", "later", reviewNow.Add(20*24*time.Hour), 20)

	stats, err := svc.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDueToday)
	assert.Equal(t, 1, stats.TotalOverdue)
	assert.Equal(t, 1, stats.TotalUpcomingWeek)
	assert.Equal(t, 4, stats.TotalRepetitions)
	assert.InDelta(t, 2.5, stats.AvgEaseFactor, 1e-9)
	assert.InDelta(t, 8.0, stats.AvgInterval, 1e-9)
}

func TestReviewService_Reset(t *testing.T) {
	svc, db := setupReviewService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Reset(ctx, "user-1", "missing"), ErrProgressNotFound)

	for i := 0; i < 3; i++ {
		_, err := svc.MarkReviewed(ctx, "user-1", "rhythm-bridge", 5)
		require.NoError(t, err, fmt.Sprintf("review %d", i))
	}
	require.NoError(t, svc.Reset(ctx, "user-1", "rhythm-bridge"))

	var stored models.ExerciseProgress
	require.NoError(t, db.Where("exercise_id = ?", "rhythm-bridge").First(&stored).Error)
	assert.Equal(t, srs.InitialEaseFactor, stored.EaseFactor)
	assert.Equal(t, srs.InitialInterval, stored.IntervalDays)
	assert.Zero(t, stored.Repetitions)
	assert.Nil(t, stored.LastReviewedAt)
	assert.True(t, reviewNow.Equal(stored.NextReviewAt))
	assert.Equal(t, 3, stored.TimesPracticed)

	due, err := svc.DueExercises(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
}
