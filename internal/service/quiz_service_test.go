package service

import (
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGradeAnswers(t *testing.T) {
	questions := []model.QuizQuestion{
		{BaseModel: model.BaseModel{ID: 1}, CorrectAnswer: "42"},
		{BaseModel: model.BaseModel{ID: 2}, CorrectAnswer: "Go"},
	}

	graded, correct, timeSpent := gradeAnswers(questions, []QuizAnswerSubmission{
		{QuestionID: 1, Answer: "42", TimeSpent: 10},
		{QuestionID: 2, Answer: "go", TimeSpent: 5}, // 大小写敏感，判错
		{QuestionID: 999, Answer: "ignored"},        // 不属于该测验
	})

	assert.Len(t, graded, 2)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 15, timeSpent)
	assert.True(t, graded[0].IsCorrect)
	assert.False(t, graded[1].IsCorrect)
}

func TestScoreOf(t *testing.T) {
	assert.Equal(t, 100, scoreOf(10, 10))
	assert.Equal(t, 0, scoreOf(0, 10))
	assert.Equal(t, 33, scoreOf(1, 3))
	assert.Equal(t, 67, scoreOf(2, 3))
	// 空题库不做除法
	assert.Equal(t, 0, scoreOf(0, 0))
}

func seedQuiz(t *testing.T, db *gorm.DB, courseID uint, passingScore int, answers []string) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{CourseID: courseID, Title: "单元测验", PassingScore: passingScore}
	require.NoError(t, db.Create(quiz).Error)
	for i, answer := range answers {
		require.NoError(t, db.Create(&model.QuizQuestion{
			QuizID:        quiz.ID,
			Content:       "问题",
			CorrectAnswer: answer,
			OrderIndex:    i,
		}).Error)
	}
	return quiz
}

func newQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(repository.NewQuizRepository(db), repository.NewEnrollmentRepository(db))
}

func TestSubmitQuizAllCorrect(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	quiz := seedQuiz(t, db, course.ID, 60, []string{"a", "b", "c"})
	svc := newQuizService(db)

	var questions []model.QuizQuestion
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).Order("order_index").Find(&questions).Error)

	submissions := make([]QuizAnswerSubmission, len(questions))
	for i, q := range questions {
		submissions[i] = QuizAnswerSubmission{QuestionID: q.ID, Answer: q.CorrectAnswer, TimeSpent: 20}
	}

	result, err := svc.SubmitQuiz(quiz.ID, enrollment.ID, 7, submissions)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.True(t, result.Passed)
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 60, result.PassingScore)
	require.NotNil(t, result.Attempt)
	assert.Len(t, result.Attempt.Answers, 3)
	assert.NotNil(t, result.Attempt.CompletedAt)
	assert.Equal(t, 60, result.Attempt.TimeSpent)
}

func TestSubmitQuizAllWrong(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	quiz := seedQuiz(t, db, course.ID, 60, []string{"a", "b"})
	svc := newQuizService(db)

	var questions []model.QuizQuestion
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).Find(&questions).Error)

	result, err := svc.SubmitQuiz(quiz.ID, enrollment.ID, 7, []QuizAnswerSubmission{
		{QuestionID: questions[0].ID, Answer: "x"},
		{QuestionID: questions[1].ID, Answer: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Passed)
}

func TestSubmitQuizZeroPassingScore(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	quiz := seedQuiz(t, db, course.ID, 0, []string{"a"})
	svc := newQuizService(db)

	var question model.QuizQuestion
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).First(&question).Error)

	// 及格线为 0 时 0 分也算通过
	result, err := svc.SubmitQuiz(quiz.ID, enrollment.ID, 7, []QuizAnswerSubmission{
		{QuestionID: question.ID, Answer: "wrong"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.True(t, result.Passed)
}

func TestSubmitQuizEmptyQuestionBank(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	quiz := seedQuiz(t, db, course.ID, 0, nil)
	svc := newQuizService(db)

	// 空题库：0 分且不通过，不触发除零
	result, err := svc.SubmitQuiz(quiz.ID, enrollment.ID, 7, []QuizAnswerSubmission{
		{QuestionID: 1, Answer: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Passed)
	assert.Equal(t, 0, result.TotalQuestions)
}

func TestSubmitQuizAppendOnly(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	quiz := seedQuiz(t, db, course.ID, 60, []string{"a"})
	svc := newQuizService(db)

	var question model.QuizQuestion
	require.NoError(t, db.Where("quiz_id = ?", quiz.ID).First(&question).Error)

	first, err := svc.SubmitQuiz(quiz.ID, enrollment.ID, 7, []QuizAnswerSubmission{{QuestionID: question.ID, Answer: "a"}})
	require.NoError(t, err)
	second, err := svc.SubmitQuiz(quiz.ID, enrollment.ID, 7, []QuizAnswerSubmission{{QuestionID: question.ID, Answer: "b"}})
	require.NoError(t, err)

	// 两次提交互不影响
	assert.NotEqual(t, first.Attempt.ID, second.Attempt.ID)
	assert.Equal(t, 100, first.Score)
	assert.Equal(t, 0, second.Score)

	var attempts int64
	require.NoError(t, db.Model(&model.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&attempts).Error)
	assert.Equal(t, int64(2), attempts)
}

func TestSubmitQuizNotFound(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newQuizService(db)

	_, err := svc.SubmitQuiz(999, enrollment.ID, 7, []QuizAnswerSubmission{{QuestionID: 1, Answer: "a"}})
	assert.ErrorContains(t, err, "quiz not found")

	quiz := seedQuiz(t, db, course.ID, 60, []string{"a"})
	_, err = svc.SubmitQuiz(quiz.ID, 999, 7, []QuizAnswerSubmission{{QuestionID: 1, Answer: "a"}})
	assert.ErrorContains(t, err, "enrollment not found")
}
