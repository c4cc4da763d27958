package model

import "time"

// LessonProgress 每个 (enrollment, lesson) 至多一行，首次交互时懒创建。
// isCompleted 一旦为 true 不会在正常流程中回退为 false。
type LessonProgress struct {
	BaseModel
	EnrollmentID  uint       `gorm:"uniqueIndex:idx_enrollment_lesson;not null" json:"enrollmentId"`
	LessonID      uint       `gorm:"uniqueIndex:idx_enrollment_lesson;not null" json:"lessonId"`
	IsCompleted   bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt   *time.Time `json:"completedAt"`
	TimeSpent     int        `gorm:"default:0" json:"timeSpent"`     // 秒，只增不减
	VideoProgress float64    `gorm:"default:0" json:"videoProgress"` // 0.0-1.0
	LastWatchedAt time.Time  `json:"lastWatchedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
