package controllers

import (
	"errors"
	"strconv"

	"learnhub/backend/config"
	"learnhub/backend/models"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Catalog *services.CatalogService
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Catalog: services.NewCatalogService(db)}
}

type LectureInput struct {
	Title           string  `json:"title" validate:"required"`
	DurationMinutes float64 `json:"duration_minutes" validate:"min=0"`
}

type ChapterInput struct {
	Title    string         `json:"title" validate:"required"`
	Lectures []LectureInput `json:"lectures" validate:"dive"`
}

type CreateCourseInput struct {
	Title     string         `json:"title" validate:"required"`
	ShortDesc string         `json:"short_desc"`
	Chapters  []ChapterInput `json:"chapters" validate:"dive"`
}

// CreateCourse creates a course with its chapters and lectures. The
// authenticated educator becomes the owner.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	educatorID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input CreateCourseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	course := models.Course{
		Title:      input.Title,
		ShortDesc:  input.ShortDesc,
		EducatorID: educatorID,
	}
	for i, chapter := range input.Chapters {
		ch := models.Chapter{Title: chapter.Title, SequenceOrder: i + 1}
		for j, lecture := range chapter.Lectures {
			ch.Lectures = append(ch.Lectures, models.Lecture{
				Title:           lecture.Title,
				DurationMinutes: lecture.DurationMinutes,
				SequenceOrder:   j + 1,
			})
		}
		course.Chapters = append(course.Chapters, ch)
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	// Lecture.CourseID is denormalized for catalog lookups
	if err := cc.DB.Model(&models.Lecture{}).
		Where("chapter_id IN (?)", cc.DB.Model(&models.Chapter{}).Select("id").Where("course_id = ?", course.ID)).
		Update("course_id", course.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not link lectures",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

// GetCourseStructure returns the chapter/lecture tree of a course.
func (cc *CoursesController) GetCourseStructure(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	course, err := cc.Catalog.GetCourseStructure(uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"course": course,
	})
}

// Enroll grants the authenticated user an enrollment for the course.
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	if err := cc.Catalog.EnrollUser(userID, uint(courseID)); err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not enroll",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Enrolled",
	})
}
