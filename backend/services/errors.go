package services

import "errors"

// Domain errors returned by the services. Controllers map them to HTTP
// statuses with errors.Is; nothing in this package touches the transport.
var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrLectureNotFound = errors.New("lecture does not belong to this course")
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrNotEnrolled  = errors.New("user is not enrolled in this course")
	ErrUnauthorized = errors.New("only the owning educator may modify this quiz")

	ErrNegativeDuration      = errors.New("duration must not be negative")
	ErrIncompleteAnswers     = errors.New("every question must be answered")
	ErrInvalidPassPercentage = errors.New("pass percentage must be between 0 and 100")
)
