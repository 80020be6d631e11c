package controllers

import (
	"errors"
	"strconv"

	"learnhub/backend/config"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizController struct {
	DB   *gorm.DB
	Cfg  *config.Config
	Quiz *services.QuizService
}

func NewQuizController(db *gorm.DB, cfg *config.Config) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Quiz: services.NewQuizService(db)}
}

type SubmitQuizInput struct {
	QuizID  uint                   `json:"quiz_id" validate:"required"`
	Answers []services.AnswerInput `json:"answers" validate:"required,min=1"`
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description Grades a submission and appends it to the attempt log
// @Tags quiz
// @Accept json
// @Produce json
// @Param input body SubmitQuizInput true "Quiz answers"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quiz/submit [post]
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input SubmitQuizInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	result, err := qc.Quiz.SubmitQuiz(userID, input.QuizID, input.Answers)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuizNotFound):
			return utils.NotFound(c, "Quiz not found")
		case errors.Is(err, services.ErrIncompleteAnswers):
			return utils.ValidationError(c, "Every question must be answered")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not grade quiz",
		})
	}

	return c.JSON(fiber.Map{
		"score":  result.Score,
		"passed": result.Passed,
	})
}

// GetCourseQuizzes lists the quizzes of a course.
func (qc *QuizController) GetCourseQuizzes(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	quizzes, err := qc.Quiz.GetCourseQuizzes(uint(courseID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"quizzes": quizzes,
	})
}

// GetChapterState reports the current pass state of a chapter quiz. Only the
// most recent attempt counts.
func (qc *QuizController) GetChapterState(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Query("course_id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course_id")
	}
	chapterID, err := strconv.Atoi(c.Query("chapter_id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid chapter_id")
	}

	state, err := qc.Quiz.ChapterQuizState(userID, uint(courseID), uint(chapterID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"state": state,
	})
}

// GetAttemptHistory lists the caller's attempts on one quiz, newest first.
func (qc *QuizController) GetAttemptHistory(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	attempts, err := qc.Quiz.AttemptHistory(userID, uint(quizID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"attempts": attempts,
	})
}

// CreateQuiz creates a chapter quiz for a course owned by the educator.
func (qc *QuizController) CreateQuiz(c *fiber.Ctx) error {
	educatorID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input services.QuizInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	quiz, err := qc.Quiz.CreateQuiz(educatorID, input)
	if err != nil {
		if resp, handled := quizErrorStatus(c, err); handled {
			return resp
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz created",
		"quiz":    quiz,
	})
}

// UpdateQuiz replaces the title, threshold and questions of an owned quiz.
func (qc *QuizController) UpdateQuiz(c *fiber.Ctx) error {
	educatorID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var input services.QuizInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	quiz, err := qc.Quiz.UpdateQuiz(educatorID, uint(quizID), input)
	if err != nil {
		if resp, handled := quizErrorStatus(c, err); handled {
			return resp
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz updated",
		"quiz":    quiz,
	})
}

// DeleteQuiz removes an owned quiz; historical attempts stay.
func (qc *QuizController) DeleteQuiz(c *fiber.Ctx) error {
	educatorID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	if err := qc.Quiz.DeleteQuiz(educatorID, uint(quizID)); err != nil {
		if resp, handled := quizErrorStatus(c, err); handled {
			return resp
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz deleted",
	})
}

// GetEducatorQuizzes lists every quiz across the educator's courses.
func (qc *QuizController) GetEducatorQuizzes(c *fiber.Ctx) error {
	educatorID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	quizzes, err := qc.Quiz.GetEducatorQuizzes(educatorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"quizzes": quizzes,
	})
}

// quizErrorStatus maps the shared quiz CRUD errors to a written response.
// The response helpers return the nil error of c.JSON, so a handled flag is
// reported alongside; the caller treats unhandled errors as internal.
func quizErrorStatus(c *fiber.Ctx, err error) (error, bool) {
	switch {
	case errors.Is(err, services.ErrQuizNotFound):
		return utils.NotFound(c, "Quiz not found"), true
	case errors.Is(err, services.ErrCourseNotFound):
		return utils.NotFound(c, "Course not found"), true
	case errors.Is(err, services.ErrChapterNotFound):
		return utils.NotFound(c, "Chapter not found"), true
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Forbidden(c, "You don't own this quiz"), true
	case errors.Is(err, services.ErrInvalidPassPercentage):
		return utils.ValidationError(c, "Pass percentage must be between 0 and 100"), true
	}
	return nil, false
}
