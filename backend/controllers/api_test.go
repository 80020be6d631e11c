package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"learnhub/backend/config"
	"learnhub/backend/routes"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.MigrateModels(db))

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg)
	return app
}

// doJSON fires a request and decodes the JSON body into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func register(t *testing.T, app *fiber.App, username, role string) string {
	t.Helper()

	status, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, fiber.StatusOK, status)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLearningFlow(t *testing.T) {
	app := newTestApp(t)

	educatorToken := register(t, app, "educator", "educator")
	studentToken := register(t, app, "student", "student")

	// Educator publishes a course with one chapter and two lectures.
	status, created := doJSON(t, app, "POST", "/api/educator/courses", educatorToken, map[string]interface{}{
		"title": "Go from scratch",
		"chapters": []map[string]interface{}{
			{
				"title": "Basics",
				"lectures": []map[string]interface{}{
					{"title": "Hello", "duration_minutes": 10},
					{"title": "Types", "duration_minutes": 15},
				},
			},
		},
	})
	require.Equal(t, fiber.StatusOK, status)

	course := created["course"].(map[string]interface{})
	courseID := course["ID"].(float64)
	chapter := course["Chapters"].([]interface{})[0].(map[string]interface{})
	chapterID := chapter["ID"].(float64)
	lecture := chapter["Lectures"].([]interface{})[0].(map[string]interface{})
	lectureID := lecture["ID"].(float64)

	// Student enrolls and completes a 10-minute lecture.
	status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/courses/%.0f/enroll", courseID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, completion := doJSON(t, app, "POST", "/api/user/complete-lecture", studentToken, map[string]interface{}{
		"course_id":        courseID,
		"lecture_id":       lectureID,
		"duration_minutes": 10,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 20.0, completion["points_awarded"])
	assert.Equal(t, 20.0, completion["total_score"])
	assert.Equal(t, false, completion["already_completed"])

	// A duplicate report is a no-op.
	status, repeat := doJSON(t, app, "POST", "/api/user/complete-lecture", studentToken, map[string]interface{}{
		"course_id":        courseID,
		"lecture_id":       lectureID,
		"duration_minutes": 10,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0.0, repeat["points_awarded"])
	assert.Equal(t, 20.0, repeat["total_score"])
	assert.Equal(t, true, repeat["already_completed"])

	// Educator attaches a 4-question quiz (pass threshold 70).
	questions := make([]map[string]interface{}, 0, 4)
	for i := 1; i <= 4; i++ {
		questions = append(questions, map[string]interface{}{
			"text": fmt.Sprintf("Question %d", i),
			"options": []map[string]interface{}{
				{"text": "A", "is_correct": false},
				{"text": "B", "is_correct": true},
			},
		})
	}
	status, quizResp := doJSON(t, app, "POST", "/api/educator/quiz", educatorToken, map[string]interface{}{
		"course_id":       courseID,
		"chapter_id":      chapterID,
		"title":           "Basics quiz",
		"pass_percentage": 70,
		"questions":       questions,
	})
	require.Equal(t, fiber.StatusOK, status)

	quiz := quizResp["quiz"].(map[string]interface{})
	quizID := quiz["ID"].(float64)
	quizQuestions := quiz["Questions"].([]interface{})
	require.Len(t, quizQuestions, 4)

	// Student answers 3 of 4 correctly.
	submitAnswers := make([]map[string]interface{}, 0, 4)
	for i, raw := range quizQuestions {
		question := raw.(map[string]interface{})
		choice := "B"
		if i == 3 {
			choice = "A"
		}
		submitAnswers = append(submitAnswers, map[string]interface{}{
			"question_id":     question["ID"],
			"selected_option": choice,
		})
	}
	status, graded := doJSON(t, app, "POST", "/api/quiz/submit", studentToken, map[string]interface{}{
		"quiz_id": quizID,
		"answers": submitAnswers,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 75.0, graded["score"])
	assert.Equal(t, true, graded["passed"])

	// Grading is deterministic on resubmission.
	status, regraded := doJSON(t, app, "POST", "/api/quiz/submit", studentToken, map[string]interface{}{
		"quiz_id": quizID,
		"answers": submitAnswers,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 75.0, regraded["score"])

	// The chapter is currently passed (latest attempt wins).
	status, state := doJSON(t, app, "GET",
		fmt.Sprintf("/api/quiz/chapter-state?course_id=%.0f&chapter_id=%.0f", courseID, chapterID),
		studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, state["state"].(map[string]interface{})["passed"])

	// Leaderboard ranks the student; the educator is excluded.
	status, board := doJSON(t, app, "GET", "/api/leaderboard?limit=10", studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	entries := board["leaderboard"].([]interface{})
	require.Len(t, entries, 1)
	top := entries[0].(map[string]interface{})
	assert.Equal(t, "student", top["name"])
	assert.Equal(t, 20.0, top["total_score"])
	assert.Equal(t, 1.0, board["self_rank"])

	// Today's completion makes a streak of one.
	status, streak := doJSON(t, app, "GET", "/api/user/streak", studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1.0, streak["streak_length"])
}

func TestCompleteLectureRequiresEnrollment(t *testing.T) {
	app := newTestApp(t)

	educatorToken := register(t, app, "educator", "educator")
	studentToken := register(t, app, "student", "student")

	status, created := doJSON(t, app, "POST", "/api/educator/courses", educatorToken, map[string]interface{}{
		"title": "Locked course",
		"chapters": []map[string]interface{}{
			{"title": "Intro", "lectures": []map[string]interface{}{
				{"title": "L1", "duration_minutes": 5},
			}},
		},
	})
	require.Equal(t, fiber.StatusOK, status)
	course := created["course"].(map[string]interface{})
	lecture := course["Chapters"].([]interface{})[0].(map[string]interface{})["Lectures"].([]interface{})[0].(map[string]interface{})

	status, _ = doJSON(t, app, "POST", "/api/user/complete-lecture", studentToken, map[string]interface{}{
		"course_id":        course["ID"],
		"lecture_id":       lecture["ID"],
		"duration_minutes": 5,
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestQuizCRUDErrorStatuses(t *testing.T) {
	app := newTestApp(t)

	ownerToken := register(t, app, "owner", "educator")
	rivalToken := register(t, app, "rival", "educator")

	status, created := doJSON(t, app, "POST", "/api/educator/courses", ownerToken, map[string]interface{}{
		"title": "Owned course",
		"chapters": []map[string]interface{}{
			{"title": "Intro", "lectures": []map[string]interface{}{
				{"title": "L1", "duration_minutes": 5},
			}},
		},
	})
	require.Equal(t, fiber.StatusOK, status)
	course := created["course"].(map[string]interface{})
	chapter := course["Chapters"].([]interface{})[0].(map[string]interface{})

	quizPayload := map[string]interface{}{
		"course_id":       course["ID"],
		"chapter_id":      chapter["ID"],
		"title":           "Intro quiz",
		"pass_percentage": 70,
		"questions": []map[string]interface{}{
			{"text": "Q1", "options": []map[string]interface{}{
				{"text": "A", "is_correct": true},
				{"text": "B", "is_correct": false},
			}},
		},
	}
	status, quizResp := doJSON(t, app, "POST", "/api/educator/quiz", ownerToken, quizPayload)
	require.Equal(t, fiber.StatusOK, status)
	quizID := quizResp["quiz"].(map[string]interface{})["ID"].(float64)

	// A rival educator does not own the quiz.
	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/educator/quiz/%.0f", quizID), rivalToken, quizPayload)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/educator/quiz/%.0f", quizID), rivalToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	// Missing quiz
	status, _ = doJSON(t, app, "PUT", "/api/educator/quiz/9999", ownerToken, quizPayload)
	assert.Equal(t, fiber.StatusNotFound, status)

	// Rival creating a quiz on a course they do not own
	status, _ = doJSON(t, app, "POST", "/api/educator/quiz", rivalToken, quizPayload)
	assert.Equal(t, fiber.StatusForbidden, status)

	// Threshold out of range
	badThreshold := map[string]interface{}{}
	for k, v := range quizPayload {
		badThreshold[k] = v
	}
	badThreshold["pass_percentage"] = 120
	status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/educator/quiz/%.0f", quizID), ownerToken, badThreshold)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestEducatorRoutesForbiddenForStudents(t *testing.T) {
	app := newTestApp(t)

	studentToken := register(t, app, "student", "student")
	status, _ := doJSON(t, app, "POST", "/api/educator/courses", studentToken, map[string]interface{}{
		"title": "Nope",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}
