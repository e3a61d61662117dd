package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Conceptual-Machines/harmonia-api/internal/models"
	"github.com/Conceptual-Machines/harmonia-api/internal/srs"
)

const (
	DefaultDueLimit     = 20
	DefaultUpcomingDays = 7
	dateLayout          = "2006-01-02"
	day                 = 24 * time.Hour
)

// ErrProgressNotFound is returned when a user has never reviewed an exercise
var ErrProgressNotFound = errors.New("exercise progress not found")

type ReviewService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// MarkReviewed applies one quality rating to the user's schedule for an exercise,
// creating the row on first review
func (s *ReviewService) MarkReviewed(ctx context.Context, userID, exerciseID string, quality int) (*models.ReviewResponse, error) {
	if quality < srs.MinQuality || quality > srs.MaxQuality {
		return nil, fmt.Errorf("%w: %d", srs.ErrInvalidQuality, quality)
	}
	now := s.now()

	var progress models.ExerciseProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockProgress(tx, userID, exerciseID, &progress)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A concurrent first review may insert the same row; whoever loses
			// the insert waits on the row lock and applies its review on top.
			seed := models.NewExerciseProgress(userID, exerciseID, now)
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "exercise_id"}},
				DoNothing: true,
			}).Create(seed).Error; err != nil {
				return err
			}
			err = lockProgress(tx, userID, exerciseID, &progress)
		}
		if err != nil {
			return err
		}

		next, err := srs.Next(progress.ScheduleState(), quality, now)
		if err != nil {
			return err
		}
		progress.ApplySchedule(next)
		progress.TimesPracticed++
		progress.LastQuality = &quality

		return tx.Save(&progress).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	return &models.ReviewResponse{
		ExerciseID:         progress.ExerciseID,
		Quality:            quality,
		QualityDescription: srs.QualityDescription(quality),
		EaseFactor:         progress.EaseFactor,
		IntervalDays:       progress.IntervalDays,
		Repetitions:        progress.Repetitions,
		NextReviewAt:       progress.NextReviewAt.Format(time.RFC3339),
		TimesPracticed:     progress.TimesPracticed,
	}, nil
}

// lockProgress loads a row with FOR UPDATE so concurrent reviews of one
// exercise apply in sequence
func lockProgress(tx *gorm.DB, userID, exerciseID string, progress *models.ExerciseProgress) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		First(progress).Error
}

// DueExercises returns exercises whose review date has passed, most overdue first
func (s *ReviewService) DueExercises(ctx context.Context, userID string, limit int) ([]models.DueExercise, error) {
	if limit <= 0 {
		limit = DefaultDueLimit
	}
	now := s.now()

	var rows []models.ExerciseProgress
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND next_review_at <= ?", userID, now).
		Order("next_review_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load due exercises: %w", err)
	}

	due := make([]models.DueExercise, 0, len(rows))
	for _, p := range rows {
		due = append(due, models.DueExercise{
			ExerciseID:   p.ExerciseID,
			NextReviewAt: p.NextReviewAt.UTC().Format(time.RFC3339),
			IntervalDays: p.IntervalDays,
			EaseFactor:   p.EaseFactor,
			Repetitions:  p.Repetitions,
			OverdueDays:  int(now.Sub(p.NextReviewAt) / day),
		})
	}
	return due, nil
}

// UpcomingReviews counts reviews per calendar day (UTC) between now and daysAhead days from now
func (s *ReviewService) UpcomingReviews(ctx context.Context, userID string, daysAhead int) (map[string]int, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultUpcomingDays
	}
	now := s.now()
	end := now.Add(time.Duration(daysAhead) * day)

	var rows []models.ExerciseProgress
	if err := s.db.WithContext(ctx).
		Select("next_review_at").
		Where("user_id = ? AND next_review_at BETWEEN ? AND ?", userID, now, end).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load upcoming reviews: %w", err)
	}

	counts := make(map[string]int)
	for _, p := range rows {
		counts[p.NextReviewAt.UTC().Format(dateLayout)]++
	}
	return counts, nil
}

// Stats summarizes every scheduled exercise of a user
func (s *ReviewService) Stats(ctx context.Context, userID string) (*models.ReviewStats, error) {
	var rows []models.ExerciseProgress
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load review stats: %w", err)
	}

	stats := &models.ReviewStats{}
	if len(rows) == 0 {
		return stats, nil
	}

	now := s.now()
	weekAhead := now.Add(DefaultUpcomingDays * day)
	eases := make([]float64, len(rows))
	intervals := make([]float64, len(rows))

	for i, p := range rows {
		next := p.NextReviewAt
		switch {
		case next.Before(now):
			stats.TotalDueToday++
			stats.TotalOverdue++
		case next.Equal(now):
			stats.TotalDueToday++
		case !next.After(weekAhead):
			stats.TotalUpcomingWeek++
		}
		eases[i] = p.EaseFactor
		intervals[i] = float64(p.IntervalDays)
		stats.TotalRepetitions += p.Repetitions
	}

	stats.AvgEaseFactor = stat.Mean(eases, nil)
	stats.AvgInterval = stat.Mean(intervals, nil)
	return stats, nil
}

// Reset puts an exercise back into the never-reviewed state, due now.
// Practice counters are kept.
func (s *ReviewService) Reset(ctx context.Context, userID, exerciseID string) error {
	fresh := srs.NewState(s.now())

	result := s.db.WithContext(ctx).Model(&models.ExerciseProgress{}).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		Updates(map[string]interface{}{
			"ease_factor":      fresh.EaseFactor,
			"interval_days":    fresh.IntervalDays,
			"repetitions":      fresh.Repetitions,
			"last_reviewed_at": nil,
			"next_review_at":   fresh.NextReviewAt.UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to reset exercise: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProgressNotFound
	}
	return nil
}
