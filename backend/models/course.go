package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title      string `gorm:"not null"`
	ShortDesc  string
	EducatorID uint `gorm:"index;not null"`
	Chapters   []Chapter
}

type Chapter struct {
	gorm.Model
	CourseID      uint `gorm:"index;not null"`
	Title         string
	SequenceOrder int
	Lectures      []Lecture
}

type Lecture struct {
	gorm.Model
	ChapterID       uint `gorm:"index;not null"`
	CourseID        uint `gorm:"index;not null"`
	Title           string
	DurationMinutes float64
	SequenceOrder   int
}

// Enrollment authorizes a user to accrue progress in a course.
// Rows are immutable and never deleted.
type Enrollment struct {
	gorm.Model
	UserID   uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
}
