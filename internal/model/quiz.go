package model

import "time"

type Quiz struct {
	BaseModel
	CourseID     uint           `gorm:"index" json:"courseId"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	PassingScore int            `gorm:"default:60" json:"passingScore"` // 0-100
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	BaseModel
	QuizID        uint   `gorm:"index;not null" json:"quizId"`
	Content       string `gorm:"type:text;not null" json:"content"`
	CorrectAnswer string `gorm:"size:512;not null" json:"-"`
	OrderIndex    int    `gorm:"index;default:0" json:"orderIndex"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAttempt 一次测验提交，追加写入，不修改历史提交的答案
type QuizAttempt struct {
	UUIDBase
	QuizID       uint       `gorm:"index;not null" json:"quizId"`
	EnrollmentID uint       `gorm:"index;not null" json:"enrollmentId"`
	StudentID    uint       `gorm:"index;not null" json:"studentId"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	TimeSpent    int        `gorm:"default:0" json:"timeSpent"`
	Score        int        `gorm:"default:0" json:"score"` // 0-100
	Passed       bool       `gorm:"default:false" json:"passed"`

	Quiz    Quiz         `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
	Answers []QuizAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

type QuizAnswer struct {
	UUIDBase
	AttemptID  string `gorm:"index;type:varchar(36);not null" json:"attemptId"`
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Answer     string `gorm:"type:text" json:"answer"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	TimeSpent  int    `gorm:"default:0" json:"timeSpent"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
