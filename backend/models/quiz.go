package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	CourseID       uint `gorm:"index;not null"`
	ChapterID      uint `gorm:"index;not null"`
	Title          string
	PassPercentage int `gorm:"not null;default:80"`
	Questions      []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint   `gorm:"index;not null"`
	Text          string `gorm:"not null"`
	Options       datatypes.JSON // ordered array of QuizOption
	SequenceOrder int
}

type QuizOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizAttempt is an append-only audit record of one submission. Attempts are
// never updated or deleted, even when the quiz itself is removed. The current
// pass state of a chapter is the outcome of the newest attempt only.
type QuizAttempt struct {
	gorm.Model
	UserID    uint `gorm:"index;not null"`
	CourseID  uint `gorm:"index;not null"`
	ChapterID uint `gorm:"index;not null"`
	QuizID    uint `gorm:"index;not null"`
	Score     int  `gorm:"not null"` // 0-100
	Passed    bool `gorm:"not null"`
}
