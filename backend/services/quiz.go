package services

import (
	"encoding/json"
	"errors"
	"math"

	"learnhub/backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizService struct {
	DB *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{DB: db}
}

// QuestionInput is one question of an educator create/update payload.
type QuestionInput struct {
	Text    string              `json:"text" validate:"required"`
	Options []models.QuizOption `json:"options" validate:"required,min=2"`
}

// QuizInput is the educator-facing quiz payload.
type QuizInput struct {
	CourseID       uint            `json:"course_id" validate:"required"`
	ChapterID      uint            `json:"chapter_id" validate:"required"`
	Title          string          `json:"title" validate:"required"`
	PassPercentage int             `json:"pass_percentage" validate:"min=0,max=100"`
	Questions      []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// AnswerInput selects one option for one question, by option text.
type AnswerInput struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

// QuizResult is the outcome of one submission.
type QuizResult struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

// ChapterState is the gating state of a chapter's quiz for one user.
type ChapterState struct {
	Attempted     bool `json:"attempted"`
	Passed        bool `json:"passed"`
	LatestScore   int  `json:"latest_score"`
	AttemptsTaken int  `json:"attempts_taken"`
}

// CreateQuiz creates a chapter quiz. Only the educator owning the parent
// course may create one.
func (s *QuizService) CreateQuiz(educatorID uint, input QuizInput) (*models.Quiz, error) {
	if input.PassPercentage < 0 || input.PassPercentage > 100 {
		return nil, ErrInvalidPassPercentage
	}

	var course models.Course
	if err := s.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.EducatorID != educatorID {
		return nil, ErrUnauthorized
	}

	var chapterCount int64
	err := s.DB.Model(&models.Chapter{}).
		Where("id = ? AND course_id = ?", input.ChapterID, input.CourseID).
		Count(&chapterCount).Error
	if err != nil {
		return nil, err
	}
	if chapterCount == 0 {
		return nil, ErrChapterNotFound
	}

	quiz := models.Quiz{
		CourseID:       input.CourseID,
		ChapterID:      input.ChapterID,
		Title:          input.Title,
		PassPercentage: input.PassPercentage,
	}
	questions, err := buildQuestions(input.Questions)
	if err != nil {
		return nil, err
	}
	quiz.Questions = questions

	if err := s.DB.Create(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// UpdateQuiz replaces the quiz title, threshold and question set.
func (s *QuizService) UpdateQuiz(educatorID, quizID uint, input QuizInput) (*models.Quiz, error) {
	if input.PassPercentage < 0 || input.PassPercentage > 100 {
		return nil, ErrInvalidPassPercentage
	}

	quiz, err := s.ownedQuiz(educatorID, quizID)
	if err != nil {
		return nil, err
	}

	questions, err := buildQuestions(input.Questions)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		quiz.Title = input.Title
		quiz.PassPercentage = input.PassPercentage
		quiz.Questions = questions
		return tx.Save(quiz).Error
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz removes the quiz and its questions. Past attempts are immutable
// audit records and stay untouched.
func (s *QuizService) DeleteQuiz(educatorID, quizID uint) error {
	quiz, err := s.ownedQuiz(educatorID, quizID)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(quiz).Error
	})
}

// SubmitQuiz grades a submission and appends the attempt to the activity log.
//
// Grading compares the selected option text against the text of the option
// flagged correct. A partial submission is rejected, not partially graded.
func (s *QuizService) SubmitQuiz(userID, quizID uint, answers []AnswerInput) (*QuizResult, error) {
	var quiz models.Quiz
	err := s.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order ASC")
	}).First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	selected := make(map[uint]string, len(answers))
	for _, answer := range answers {
		selected[answer.QuestionID] = answer.SelectedOption
	}

	correct := 0
	for _, question := range quiz.Questions {
		choice, ok := selected[question.ID]
		if !ok {
			return nil, ErrIncompleteAnswers
		}

		var options []models.QuizOption
		if err := json.Unmarshal(question.Options, &options); err != nil {
			return nil, err
		}
		for _, option := range options {
			if option.IsCorrect {
				if option.Text == choice {
					correct++
				}
				break
			}
		}
	}

	score := 0
	if total := len(quiz.Questions); total > 0 {
		score = int(math.Round(100 * float64(correct) / float64(total)))
	}

	result := &QuizResult{
		Score:  score,
		Passed: score >= quiz.PassPercentage,
	}

	attempt := models.QuizAttempt{
		UserID:    userID,
		CourseID:  quiz.CourseID,
		ChapterID: quiz.ChapterID,
		QuizID:    quiz.ID,
		Score:     result.Score,
		Passed:    result.Passed,
	}
	if err := s.DB.Create(&attempt).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// ChapterQuizState reports the current gating state for a chapter. Only the
// most recent attempt counts; a later failing attempt overrides an earlier
// pass.
func (s *QuizService) ChapterQuizState(userID, courseID, chapterID uint) (*ChapterState, error) {
	state := &ChapterState{}

	var count int64
	err := s.DB.Model(&models.QuizAttempt{}).
		Where("user_id = ? AND course_id = ? AND chapter_id = ?", userID, courseID, chapterID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return state, nil
	}

	var latest models.QuizAttempt
	err = s.DB.
		Where("user_id = ? AND course_id = ? AND chapter_id = ?", userID, courseID, chapterID).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if err != nil {
		return nil, err
	}

	state.Attempted = true
	state.Passed = latest.Passed
	state.LatestScore = latest.Score
	state.AttemptsTaken = int(count)
	return state, nil
}

// GetCourseQuizzes lists the quizzes of a course with their questions.
func (s *QuizService) GetCourseQuizzes(courseID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order ASC")
	}).Where("course_id = ?", courseID).Find(&quizzes).Error
	return quizzes, err
}

// GetEducatorQuizzes lists every quiz across the educator's courses.
func (s *QuizService) GetEducatorQuizzes(educatorID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.DB.
		Joins("JOIN courses ON courses.id = quizzes.course_id").
		Where("courses.educator_id = ?", educatorID).
		Preload("Questions").
		Find(&quizzes).Error
	return quizzes, err
}

// AttemptHistory lists a user's attempts on a quiz, newest first.
func (s *QuizService) AttemptHistory(userID, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := s.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at DESC, id DESC").
		Find(&attempts).Error
	return attempts, err
}

func (s *QuizService) ownedQuiz(educatorID, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := s.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	var course models.Course
	if err := s.DB.First(&course, quiz.CourseID).Error; err != nil {
		return nil, err
	}
	if course.EducatorID != educatorID {
		return nil, ErrUnauthorized
	}
	return &quiz, nil
}

func buildQuestions(inputs []QuestionInput) ([]models.QuizQuestion, error) {
	questions := make([]models.QuizQuestion, 0, len(inputs))
	for i, input := range inputs {
		encoded, err := json.Marshal(input.Options)
		if err != nil {
			return nil, err
		}
		questions = append(questions, models.QuizQuestion{
			Text:          input.Text,
			Options:       datatypes.JSON(encoded),
			SequenceOrder: i + 1,
		})
	}
	return questions, nil
}
