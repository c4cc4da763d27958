package service

import (
	"math"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo       *repository.QuizRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewQuizService(quizRepo *repository.QuizRepository, enrollmentRepo *repository.EnrollmentRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo, EnrollmentRepo: enrollmentRepo}
}

type QuizAnswerSubmission struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"timeSpent"`
}

type QuizSubmissionRequest struct {
	EnrollmentID uint                   `json:"enrollmentId" binding:"required"`
	StudentID    uint                   `json:"studentId"`
	Answers      []QuizAnswerSubmission `json:"answers" binding:"required"`
}

type QuizResult struct {
	Attempt        *model.QuizAttempt `json:"attempt"`
	Score          int                `json:"score"`
	Passed         bool               `json:"passed"`
	CorrectAnswers int                `json:"correctAnswers"`
	TotalQuestions int                `json:"totalQuestions"`
	PassingScore   int                `json:"passingScore"`
}

// gradeAnswers 纯判分：逐题精确比对（大小写敏感，按存储原样），
// 不属于本测验的 questionId 直接忽略。
func gradeAnswers(questions []model.QuizQuestion, answers []QuizAnswerSubmission) (graded []model.QuizAnswer, correct int, timeSpent int) {
	questionByID := make(map[uint]*model.QuizQuestion, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}

	for _, ans := range answers {
		question, ok := questionByID[ans.QuestionID]
		if !ok {
			continue
		}
		isCorrect := question.CorrectAnswer == ans.Answer
		if isCorrect {
			correct++
		}
		timeSpent += ans.TimeSpent
		graded = append(graded, model.QuizAnswer{
			QuestionID: ans.QuestionID,
			Answer:     ans.Answer,
			IsCorrect:  isCorrect,
			TimeSpent:  ans.TimeSpent,
		})
	}
	return graded, correct, timeSpent
}

// scoreOf 得分 = round(正确数/题目总数×100)；空题库测验定义为 0 分不通过
func scoreOf(correct, totalQuestions int) int {
	if totalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(totalQuestions) * 100))
}

// SubmitQuiz 提交一次测验：先落锚点提交（0 分未通过）再逐题判分入库，
// 最后回填最终得分。提交只追加，不改写历史提交。
func (s *QuizService) SubmitQuiz(quizID, enrollmentID, studentID uint, answers []QuizAnswerSubmission) (*QuizResult, error) {
	if quizID == 0 || enrollmentID == 0 || studentID == 0 {
		return nil, util.ErrInvalidID
	}

	quiz, err := s.QuizRepo.FindWithQuestions(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if _, err := s.EnrollmentRepo.FindByID(enrollmentID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	attempt := &model.QuizAttempt{
		QuizID:       quizID,
		EnrollmentID: enrollmentID,
		StudentID:    studentID,
		StartedAt:    time.Now(),
	}
	if err := s.QuizRepo.CreateAttempt(attempt); err != nil {
		return nil, err
	}

	graded, correct, timeSpent := gradeAnswers(quiz.Questions, answers)
	for i := range graded {
		graded[i].AttemptID = attempt.ID
		if err := s.QuizRepo.CreateAnswer(&graded[i]); err != nil {
			return nil, err
		}
	}

	totalQuestions := len(quiz.Questions)
	score := scoreOf(correct, totalQuestions)
	passed := totalQuestions > 0 && score >= quiz.PassingScore

	if err := s.QuizRepo.FinalizeAttempt(attempt.ID, score, passed, timeSpent); err != nil {
		return nil, err
	}

	full, err := s.QuizRepo.FindAttemptWithAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	return &QuizResult{
		Attempt:        full,
		Score:          score,
		Passed:         passed,
		CorrectAnswers: correct,
		TotalQuestions: totalQuestions,
		PassingScore:   quiz.PassingScore,
	}, nil
}
