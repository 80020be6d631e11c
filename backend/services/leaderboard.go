package services

import (
	"learnhub/backend/models"

	"gorm.io/gorm"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	UserID     uint   `json:"user_id"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url"`
	TotalScore int    `json:"total_score"`
}

// GetLeaderboard returns the top `limit` learners by aggregate score and the
// requesting user's rank within the full ordering (0 when not ranked).
//
// Educators and admins never appear. Ties are broken by user id ascending so
// two calls with no intervening writes return identical ordering.
func (s *LeaderboardService) GetLeaderboard(limit int, selfUserID uint) ([]LeaderboardEntry, int, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []LeaderboardEntry
	err := s.DB.Model(&models.UserAggregate{}).
		Select("users.id AS user_id, users.username AS name, users.avatar_url, user_aggregates.total_score").
		Joins("JOIN users ON users.id = user_aggregates.user_id").
		Where("users.role NOT IN ?", []string{models.RoleEducator, models.RoleAdmin}).
		Order("user_aggregates.total_score DESC, users.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	// Self rank comes from the full ordering, not the truncated page.
	selfRank := 0
	for i, entry := range entries {
		if entry.UserID == selfUserID {
			selfRank = i + 1
			break
		}
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, selfRank, nil
}
