package services

import (
	"errors"
	"time"

	"learnhub/backend/models"

	"gorm.io/gorm"
)

type ProgressService struct {
	DB      *gorm.DB
	Catalog *CatalogService
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db, Catalog: NewCatalogService(db)}
}

// CompletionResult is what a lecture completion reports back to the caller.
type CompletionResult struct {
	PointsAwarded    int  `json:"points_awarded"`
	TotalScore       int  `json:"total_score"`
	AlreadyCompleted bool `json:"already_completed"`
}

// ProgressRecord is the full completion record for a (user, course) pair.
type ProgressRecord struct {
	UserID      uint                       `json:"user_id"`
	CourseID    uint                       `json:"course_id"`
	TotalScore  int                        `json:"total_score"`
	Completions []models.LectureCompletion `json:"lectures_completed"`
}

// RecordLectureCompletion scores a completed lecture and persists it.
//
// A lecture already present for the (user, course) pair is a successful no-op
// reporting AlreadyCompleted with zero points. The guard is the composite
// unique index on lecture completions, not a check before the insert, so
// concurrent duplicate requests cannot both award points. The completion row,
// the course total and the user aggregate move in one transaction.
func (s *ProgressService) RecordLectureCompletion(userID, courseID, lectureID uint, durationMinutes float64) (*CompletionResult, error) {
	if durationMinutes < 0 {
		return nil, ErrNegativeDuration
	}

	enrolled, err := s.Catalog.IsEnrolled(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	exists, err := s.Catalog.LectureBelongsToCourse(courseID, lectureID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrLectureNotFound
	}

	points := PointsForDuration(durationMinutes)

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		result := &CompletionResult{PointsAwarded: points}

		err = s.DB.Transaction(func(tx *gorm.DB) error {
			completion := models.LectureCompletion{
				UserID:          userID,
				CourseID:        courseID,
				LectureID:       lectureID,
				DurationMinutes: durationMinutes,
				PointsAwarded:   points,
				CompletedAt:     time.Now(),
			}
			if err := tx.Create(&completion).Error; err != nil {
				return err
			}

			var progress models.CourseProgress
			if err := tx.Where(models.CourseProgress{UserID: userID, CourseID: courseID}).
				FirstOrCreate(&progress).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.CourseProgress{}).
				Where("id = ?", progress.ID).
				Update("total_score", gorm.Expr("total_score + ?", points)).Error; err != nil {
				return err
			}
			// Re-read after the increment so the reported running total is
			// the stored one, not the pre-update snapshot.
			if err := tx.First(&progress, progress.ID).Error; err != nil {
				return err
			}
			result.TotalScore = progress.TotalScore

			var aggregate models.UserAggregate
			if err := tx.Where(models.UserAggregate{UserID: userID}).
				FirstOrCreate(&aggregate).Error; err != nil {
				return err
			}
			return tx.Model(&models.UserAggregate{}).
				Where("id = ?", aggregate.ID).
				Update("total_score", gorm.Expr("total_score + ?", points)).Error
		})
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err

		// A duplicate key can come from the completion index (a true repeat)
		// or from losing a FirstOrCreate race on one of the counter rows.
		// Only a true repeat leaves a completion row behind; anything else
		// was rolled back and must be retried, not reported as completed.
		var count int64
		if err := s.DB.Model(&models.LectureCompletion{}).
			Where("user_id = ? AND course_id = ? AND lecture_id = ?", userID, courseID, lectureID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			record, err := s.GetProgress(userID, courseID)
			if err != nil {
				return nil, err
			}
			return &CompletionResult{
				PointsAwarded:    0,
				TotalScore:       record.TotalScore,
				AlreadyCompleted: true,
			}, nil
		}
	}

	return nil, lastErr
}

// GetProgress returns the completion record for a (user, course) pair, or an
// empty record when the user has not completed anything yet.
func (s *ProgressService) GetProgress(userID, courseID uint) (*ProgressRecord, error) {
	record := &ProgressRecord{UserID: userID, CourseID: courseID}

	var progress models.CourseProgress
	err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record.Completions = []models.LectureCompletion{}
			return record, nil
		}
		return nil, err
	}
	record.TotalScore = progress.TotalScore

	err = s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("completed_at ASC").
		Find(&record.Completions).Error
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ReconcileAggregates recomputes every user aggregate from the course
// progress totals. The incremental updates keep aggregates correct on their
// own; this is the scheduled consistency backstop.
func (s *ProgressService) ReconcileAggregates() error {
	type userSum struct {
		UserID uint
		Total  int
	}

	var sums []userSum
	err := s.DB.Model(&models.CourseProgress{}).
		Select("user_id, COALESCE(SUM(total_score), 0) AS total").
		Group("user_id").
		Scan(&sums).Error
	if err != nil {
		return err
	}

	totals := make(map[uint]int, len(sums))
	for _, sum := range sums {
		totals[sum.UserID] = sum.Total
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var aggregates []models.UserAggregate
		if err := tx.Find(&aggregates).Error; err != nil {
			return err
		}

		for _, aggregate := range aggregates {
			want := totals[aggregate.UserID]
			delete(totals, aggregate.UserID)
			if aggregate.TotalScore == want {
				continue
			}
			if err := tx.Model(&models.UserAggregate{}).
				Where("id = ?", aggregate.ID).
				Update("total_score", want).Error; err != nil {
				return err
			}
		}

		// Users with progress but no aggregate row yet.
		for userID, total := range totals {
			aggregate := models.UserAggregate{UserID: userID, TotalScore: total}
			if err := tx.Create(&aggregate).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
