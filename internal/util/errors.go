package util

import "errors"

var (
	ErrInvalidID            = errors.New("invalid id")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrLessonNotInCourse    = errors.New("lesson not in this course")
	ErrModuleNotInCourse    = errors.New("module not in this course")
	ErrAlreadyEnrolled      = errors.New("该课程已报名")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidVideoProgress = errors.New("videoProgress must be between 0 and 1")
	ErrInvalidTimeSpent     = errors.New("timeSpent must be non-negative")
)
