package services

import (
	"fmt"
	"testing"
	"time"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database. TranslateError is on
// so unique-index violations behave like they do against postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateModels(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedCourse creates a course with one chapter and the given lecture
// durations, returning the course, the chapter and the lecture ids in order.
func seedCourse(t *testing.T, db *gorm.DB, educatorID uint, durations ...float64) (uint, uint, []uint) {
	t.Helper()

	course := models.Course{Title: "Course", EducatorID: educatorID}
	require.NoError(t, db.Create(&course).Error)

	chapter := models.Chapter{CourseID: course.ID, Title: "Chapter 1", SequenceOrder: 1}
	require.NoError(t, db.Create(&chapter).Error)

	lectureIDs := make([]uint, 0, len(durations))
	for i, duration := range durations {
		lecture := models.Lecture{
			ChapterID:       chapter.ID,
			CourseID:        course.ID,
			Title:           fmt.Sprintf("Lecture %d", i+1),
			DurationMinutes: duration,
			SequenceOrder:   i + 1,
		}
		require.NoError(t, db.Create(&lecture).Error)
		lectureIDs = append(lectureIDs, lecture.ID)
	}
	return course.ID, chapter.ID, lectureIDs
}

func enroll(t *testing.T, db *gorm.DB, userID, courseID uint) {
	t.Helper()
	require.NoError(t, NewCatalogService(db).EnrollUser(userID, courseID))
}

// seedCompletionAt inserts a completion row with an explicit timestamp,
// bypassing the service, for streak/calendar tests.
func seedCompletionAt(t *testing.T, db *gorm.DB, userID, courseID, lectureID uint, minutes float64, at time.Time) {
	t.Helper()

	completion := models.LectureCompletion{
		UserID:          userID,
		CourseID:        courseID,
		LectureID:       lectureID,
		DurationMinutes: minutes,
		PointsAwarded:   PointsForDuration(minutes),
		CompletedAt:     at,
	}
	require.NoError(t, db.Create(&completion).Error)
}
