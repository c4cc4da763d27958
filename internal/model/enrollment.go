package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending    EnrollmentStatus = "PENDING"
	EnrollmentInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentCompleted  EnrollmentStatus = "COMPLETED"
)

// Enrollment 一个学生对一门课程的报名记录。
// progress 始终等于该报名下已完成课时占课程总课时的百分比；
// completedAt 当且仅当 status == COMPLETED 时非空。
type Enrollment struct {
	BaseModel
	StudentID       uint             `gorm:"uniqueIndex:idx_student_course;not null" json:"studentId"`
	CourseID        uint             `gorm:"uniqueIndex:idx_student_course;not null" json:"courseId"`
	Status          EnrollmentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	Progress        float64          `gorm:"default:0" json:"progress"` // 0-100
	CurrentModuleID *uint            `json:"currentModuleId"`
	CurrentLessonID *uint            `json:"currentLessonId"`
	EnrolledAt      time.Time        `json:"enrolledAt"`
	StartedAt       *time.Time       `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt"`
	TimeSpent       int64            `gorm:"default:0" json:"timeSpent"` // 累计学习秒数，只增不减

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
