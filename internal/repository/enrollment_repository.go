package repository

import (
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByID(enrollmentID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := r.DB.First(&enrollment, enrollmentID).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// EnrollmentUpdate 一次完成调用之后需要落到报名记录上的全部状态
type EnrollmentUpdate struct {
	Status          model.EnrollmentStatus
	Progress        float64
	CurrentModuleID *uint
	CurrentLessonID *uint
	StartedAt       *time.Time
	CompletedAt     *time.Time
	TimeSpentDelta  int64
}

// ApplyProgress 把聚合结果写回报名记录。
// time_spent 用 SQL 表达式原地累加，避免并发完成不同课时时丢失更新。
func (r *EnrollmentRepository) ApplyProgress(enrollmentID uint, upd EnrollmentUpdate) error {
	values := map[string]interface{}{
		"status":            upd.Status,
		"progress":          upd.Progress,
		"current_module_id": upd.CurrentModuleID,
		"current_lesson_id": upd.CurrentLessonID,
	}
	if upd.StartedAt != nil {
		values["started_at"] = upd.StartedAt
	}
	if upd.CompletedAt != nil {
		values["completed_at"] = upd.CompletedAt
	}
	if upd.TimeSpentDelta > 0 {
		values["time_spent"] = gorm.Expr("time_spent + ?", upd.TimeSpentDelta)
	}

	return r.DB.Model(&model.Enrollment{}).
		Where("id = ?", enrollmentID).
		Updates(values).Error
}
