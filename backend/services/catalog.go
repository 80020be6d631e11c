package services

import (
	"errors"

	"learnhub/backend/models"

	"gorm.io/gorm"
)

// CatalogService is the read side of the course catalog plus enrollment
// grants. The progress and quiz services validate ids against it.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// GetCourseStructure returns the course with its chapters and lectures,
// ordered by sequence.
func (s *CatalogService) GetCourseStructure(courseID uint) (*models.Course, error) {
	var course models.Course
	err := s.DB.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Preload("Chapters.Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// LectureBelongsToCourse checks that the lecture id exists in the course's
// catalog.
func (s *CatalogService) LectureBelongsToCourse(courseID, lectureID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Lecture{}).
		Where("id = ? AND course_id = ?", lectureID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetQuizForChapter returns the quiz id attached to a chapter, or 0 when the
// chapter has no quiz.
func (s *CatalogService) GetQuizForChapter(courseID, chapterID uint) (uint, error) {
	var quiz models.Quiz
	err := s.DB.Select("id").
		Where("course_id = ? AND chapter_id = ?", courseID, chapterID).
		First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return quiz.ID, nil
}

// EnrollUser grants the enrollment that authorizes progress accrual.
// Granting twice is a no-op; enrollments are never deleted.
func (s *CatalogService) EnrollUser(userID, courseID uint) error {
	var count int64
	if err := s.DB.Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCourseNotFound
	}

	enrollment := models.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.DB.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

// IsEnrolled reports whether the user holds an enrollment for the course.
func (s *CatalogService) IsEnrolled(userID, courseID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
