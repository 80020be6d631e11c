package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseProgress is the per-user-per-course ledger header. TotalScore always
// equals the sum of PointsAwarded over the matching LectureCompletion rows.
type CourseProgress struct {
	gorm.Model
	UserID     uint `gorm:"uniqueIndex:idx_progress_user_course;not null"`
	CourseID   uint `gorm:"uniqueIndex:idx_progress_user_course;not null"`
	TotalScore int  `gorm:"not null;default:0"`
}

// LectureCompletion records one completed lecture. The composite unique index
// is what makes completion idempotent under concurrent duplicate requests.
type LectureCompletion struct {
	gorm.Model
	UserID          uint `gorm:"uniqueIndex:idx_completion_user_course_lecture;not null"`
	CourseID        uint `gorm:"uniqueIndex:idx_completion_user_course_lecture;not null"`
	LectureID       uint `gorm:"uniqueIndex:idx_completion_user_course_lecture;not null"`
	DurationMinutes float64
	PointsAwarded   int
	CompletedAt     time.Time `gorm:"index"`
}
