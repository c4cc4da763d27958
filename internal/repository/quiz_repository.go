package repository

import (
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindWithQuestions(quizID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.order_index ASC")
		}).
		First(&quiz, quizID).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) CreateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizRepository) CreateAnswer(answer *model.QuizAnswer) error {
	return r.DB.Create(answer).Error
}

// FinalizeAttempt 所有答案入库后回填锚点提交的最终得分
func (r *QuizRepository) FinalizeAttempt(attemptID string, score int, passed bool, timeSpent int) error {
	now := time.Now()
	return r.DB.Model(&model.QuizAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"score":        score,
			"passed":       passed,
			"time_spent":   timeSpent,
			"completed_at": &now,
		}).Error
}

func (r *QuizRepository) FindAttemptWithAnswers(attemptID string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.
		Preload("Quiz").
		Preload("Answers").
		First(&attempt, "id = ?", attemptID).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
