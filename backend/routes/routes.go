package routes

import (
	"learnhub/backend/config"
	"learnhub/backend/controllers"
	"learnhub/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	educatorMiddleware := middleware.EducatorMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)

	// Progress and streak routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Post("/api/user/complete-lecture", authMiddleware, progressController.CompleteLecture)
	app.Post("/api/user/course-progress", authMiddleware, progressController.GetCourseProgress)
	app.Get("/api/user/streak", authMiddleware, progressController.GetStreak)
	app.Get("/api/user/daily-minutes", authMiddleware, progressController.GetDailyMinutes)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/:id/structure", coursesController.GetCourseStructure)
	courses.Post("/:id/enroll", coursesController.Enroll)

	// Quiz routes
	quizController := controllers.NewQuizController(db, cfg)
	quiz := app.Group("/api/quiz", authMiddleware)
	quiz.Post("/submit", quizController.SubmitQuiz)
	quiz.Get("/chapter-state", quizController.GetChapterState)
	quiz.Get("/course/:courseId", quizController.GetCourseQuizzes)
	quiz.Get("/:id/attempts", quizController.GetAttemptHistory)

	// Leaderboard
	leaderboardController := controllers.NewLeaderboardController(db, cfg)
	app.Get("/api/leaderboard", authMiddleware, leaderboardController.GetLeaderboard)

	// Educator routes
	educator := app.Group("/api/educator", authMiddleware, educatorMiddleware)
	educator.Post("/courses", coursesController.CreateCourse)
	educator.Get("/quizzes", quizController.GetEducatorQuizzes)
	educator.Post("/quiz", quizController.CreateQuiz)
	educator.Put("/quiz/:id", quizController.UpdateQuiz)
	educator.Delete("/quiz/:id", quizController.DeleteQuiz)
}
