package service

import (
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
}

func NewEnrollmentService(enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository) *EnrollmentService {
	return &EnrollmentService{EnrollmentRepo: enrollmentRepo, CourseRepo: courseRepo}
}

// Enroll 创建 PENDING 状态的报名，进度引擎从这里接手后续状态流转
func (s *EnrollmentService) Enroll(studentID, courseID uint) (*model.Enrollment, error) {
	if courseID == 0 {
		return nil, util.ErrInvalidID
	}

	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if _, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	enrollment := &model.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		Status:     model.EnrollmentPending,
		EnrolledAt: time.Now(),
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) GetByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return enrollment, nil
}
