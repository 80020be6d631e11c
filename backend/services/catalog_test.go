package services

import (
	"testing"

	"learnhub/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollUserIdempotent(t *testing.T) {
	db := newTestDB(t)
	educator := seedUser(t, db, "educator", models.RoleEducator)
	student := seedUser(t, db, "student", models.RoleStudent)
	courseID, _, _ := seedCourse(t, db, educator.ID, 10)

	service := NewCatalogService(db)
	require.NoError(t, service.EnrollUser(student.ID, courseID))
	require.NoError(t, service.EnrollUser(student.ID, courseID))

	var count int64
	db.Model(&models.Enrollment{}).Where("user_id = ?", student.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, service.EnrollUser(student.ID, 9999), ErrCourseNotFound)
}

func TestGetCourseStructure(t *testing.T) {
	db := newTestDB(t)
	educator := seedUser(t, db, "educator", models.RoleEducator)
	courseID, chapterID, lectures := seedCourse(t, db, educator.ID, 10, 20)

	service := NewCatalogService(db)
	course, err := service.GetCourseStructure(courseID)
	require.NoError(t, err)
	require.Len(t, course.Chapters, 1)
	assert.Equal(t, chapterID, course.Chapters[0].ID)
	require.Len(t, course.Chapters[0].Lectures, 2)
	assert.Equal(t, lectures[0], course.Chapters[0].Lectures[0].ID)

	_, err = service.GetCourseStructure(9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGetQuizForChapter(t *testing.T) {
	db := newTestDB(t)
	educator := seedUser(t, db, "educator", models.RoleEducator)
	courseID, chapterID, _ := seedCourse(t, db, educator.ID, 10)

	catalog := NewCatalogService(db)
	quizID, err := catalog.GetQuizForChapter(courseID, chapterID)
	require.NoError(t, err)
	assert.Zero(t, quizID, "chapter without a quiz")

	quiz, err := NewQuizService(db).CreateQuiz(educator.ID, fourQuestionQuiz(courseID, chapterID, 70))
	require.NoError(t, err)

	quizID, err = catalog.GetQuizForChapter(courseID, chapterID)
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, quizID)
}
