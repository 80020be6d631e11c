package controllers

import (
	"errors"
	"strconv"
	"time"

	"learnhub/backend/config"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
	Streak   *services.StreakService
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{
		DB:       db,
		Cfg:      cfg,
		Progress: services.NewProgressService(db),
		Streak:   services.NewStreakService(db),
	}
}

type CompleteLectureInput struct {
	CourseID        uint    `json:"course_id" validate:"required"`
	LectureID       uint    `json:"lecture_id" validate:"required"`
	DurationMinutes float64 `json:"duration_minutes" validate:"min=0"`
}

// CompleteLecture godoc
// @Summary Record a completed lecture
// @Description Awards points for a watched lecture; repeating a lecture is a no-op
// @Tags progress
// @Accept json
// @Produce json
// @Param input body CompleteLectureInput true "Completed lecture"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/complete-lecture [post]
func (pc *ProgressController) CompleteLecture(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input CompleteLectureInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	result, err := pc.Progress.RecordLectureCompletion(userID, input.CourseID, input.LectureID, input.DurationMinutes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEnrolled):
			return utils.Forbidden(c, "Not enrolled in this course")
		case errors.Is(err, services.ErrLectureNotFound):
			return utils.NotFound(c, "Lecture not found")
		case errors.Is(err, services.ErrNegativeDuration):
			return utils.BadRequest(c, "Duration must not be negative")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save progress",
		})
	}

	message := "Progress updated"
	if result.AlreadyCompleted {
		message = "Lecture already completed"
	}

	return c.JSON(fiber.Map{
		"message":           message,
		"points_awarded":    result.PointsAwarded,
		"total_score":       result.TotalScore,
		"already_completed": result.AlreadyCompleted,
	})
}

// GetCourseProgress returns the full completion record for one course.
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		CourseID uint `json:"course_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	record, err := pc.Progress.GetProgress(userID, input.CourseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"progress": record,
	})
}

// GetStreak godoc
// @Summary Get learning streak
// @Description Returns the consecutive-day streak and a calendar for the requested range
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/streak [get]
func (pc *ProgressController) GetStreak(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	tzOffset, reference, err := parseStreakParams(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	streak, err := pc.Streak.ComputeStreak(userID, reference, tzOffset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Calendar range defaults to the reference month.
	loc := time.FixedZone("caller", tzOffset*60)
	local := reference.In(loc)
	from := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, -1)
	if v := c.Query("from"); v != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
			from = parsed
		}
	}
	if v := c.Query("to"); v != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
			to = parsed
		}
	}

	calendar, err := pc.Streak.LearningCalendar(userID, from, to, tzOffset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"streak_length": streak,
		"calendar":      calendar,
	})
}

// GetDailyMinutes returns the minutes-per-day series for the dashboard chart.
func (pc *ProgressController) GetDailyMinutes(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	tzOffset, reference, err := parseStreakParams(c)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 366 {
			return utils.BadRequest(c, "Invalid days")
		}
		days = parsed
	}

	series, err := pc.Streak.DailyMinutes(userID, reference, days, tzOffset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"daily_minutes": series,
	})
}

// parseStreakParams reads the caller's timezone offset (minutes east of UTC)
// and reference date. The caller's calendar decides day boundaries, never the
// server clock.
func parseStreakParams(c *fiber.Ctx) (int, time.Time, error) {
	tzOffset := 0
	if v := c.Query("tz_offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < -840 || parsed > 840 {
			return 0, time.Time{}, errors.New("invalid tz_offset")
		}
		tzOffset = parsed
	}

	reference := time.Now()
	if v := c.Query("reference_date"); v != "" {
		loc := time.FixedZone("caller", tzOffset*60)
		parsed, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return 0, time.Time{}, errors.New("invalid reference_date")
		}
		reference = parsed
	}
	return tzOffset, reference, nil
}
