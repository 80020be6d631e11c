package controllers

import (
	"learnhub/backend/config"
	"learnhub/backend/models"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile with total score
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	// Агрегированный счет пользователя
	var aggregate models.UserAggregate
	uc.DB.Where("user_id = ?", userID).First(&aggregate)

	var enrollments []models.Enrollment
	uc.DB.Where("user_id = ?", userID).Find(&enrollments)
	courseIDs := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		courseIDs = append(courseIDs, enrollment.CourseID)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":               user.ID,
		"username":         user.Username,
		"email":            user.Email,
		"role":             user.Role,
		"avatar_url":       user.AvatarURL,
		"total_score":      aggregate.TotalScore,
		"enrolled_courses": courseIDs,
		"created_at":       user.CreatedAt,
	})
}
