package controllers

import (
	"strconv"

	"learnhub/backend/config"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LeaderboardController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Leaderboard *services.LeaderboardService
}

func NewLeaderboardController(db *gorm.DB, cfg *config.Config) *LeaderboardController {
	return &LeaderboardController{DB: db, Cfg: cfg, Leaderboard: services.NewLeaderboardService(db)}
}

// GetLeaderboard godoc
// @Summary Get top learners
// @Description Returns the ranked leaderboard and the requester's own rank
// @Tags leaderboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /leaderboard [get]
func (lc *LeaderboardController) GetLeaderboard(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			return utils.BadRequest(c, "Invalid limit")
		}
		limit = parsed
	}

	entries, selfRank, err := lc.Leaderboard.GetLeaderboard(limit, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"leaderboard": entries,
		"self_rank":   selfRank, // 0 means not ranked
	})
}
