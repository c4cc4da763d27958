package service

import (
	"fmt"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.LessonProgress{},
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAttempt{},
		&model.QuizAnswer{},
	))
	return db
}

// seedCourse 2 个模块：A=[A1,A2]，B=[B1]，与纯聚合测试同构
func seedCourse(t *testing.T, db *gorm.DB) *model.Course {
	t.Helper()
	course := twoModuleCourse()
	require.NoError(t, db.Create(course).Error)
	return course
}

func seedEnrollment(t *testing.T, db *gorm.DB, studentID, courseID uint) *model.Enrollment {
	t.Helper()
	enrollment := &model.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    model.EnrollmentPending,
	}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}

func newProgressService(db *gorm.DB) *ProgressService {
	return NewProgressService(
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db, nil, 0),
		repository.NewLessonProgressRepository(db),
		300,
	)
}

func TestCompleteLessonScenario(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	// A1：模块A 50%，课程 1/3，下一课时 A2
	result, err := svc.CompleteLesson(7, model.Student, enrollment.ID, 101, CompleteLessonRequest{TimeSpent: 60})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, result.ModuleProgress.Progress, 0.01)
	assert.InDelta(t, 100.0/3, result.CourseProgress.Progress, 0.01)
	require.NotNil(t, result.NextLesson)
	assert.Equal(t, uint(102), result.NextLesson.ID)
	assert.Equal(t, model.EnrollmentInProgress, result.Enrollment.Status)
	assert.NotNil(t, result.Enrollment.StartedAt)
	assert.Equal(t, int64(60), result.Enrollment.TimeSpent)
	require.NotNil(t, result.Enrollment.CurrentLessonID)
	assert.Equal(t, uint(102), *result.Enrollment.CurrentLessonID)

	// A2：模块A 100%，课程 2/3，跳到模块B的 B1
	result, err = svc.CompleteLesson(7, model.Student, enrollment.ID, 102, CompleteLessonRequest{TimeSpent: 90})
	require.NoError(t, err)
	assert.True(t, result.ModuleProgress.IsCompleted)
	assert.InDelta(t, 200.0/3, result.CourseProgress.Progress, 0.01)
	require.NotNil(t, result.NextLesson)
	assert.Equal(t, uint(201), result.NextLesson.ID)
	require.NotNil(t, result.Enrollment.CurrentModuleID)
	assert.Equal(t, uint(20), *result.Enrollment.CurrentModuleID)

	// B1：课程 100%，报名进入终态，无下一步
	result, err = svc.CompleteLesson(7, model.Student, enrollment.ID, 201, CompleteLessonRequest{TimeSpent: 30})
	require.NoError(t, err)
	assert.True(t, result.CourseProgress.IsCompleted)
	assert.Nil(t, result.NextLesson)
	assert.Equal(t, model.EnrollmentCompleted, result.Enrollment.Status)
	assert.NotNil(t, result.Enrollment.CompletedAt)
	assert.InDelta(t, 100.0, result.Enrollment.Progress, 0.01)
	assert.Nil(t, result.Enrollment.CurrentLessonID)
	assert.Equal(t, int64(180), result.Enrollment.TimeSpent)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	_, err := svc.CompleteLesson(7, model.Student, enrollment.ID, 101, CompleteLessonRequest{TimeSpent: 60})
	require.NoError(t, err)
	result, err := svc.CompleteLesson(7, model.Student, enrollment.ID, 101, CompleteLessonRequest{TimeSpent: 30})
	require.NoError(t, err)

	// 只有一行进度，时长按两次增量累加，完成数不重复计
	var count int64
	require.NoError(t, db.Model(&model.LessonProgress{}).
		Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, 101).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 90, result.LessonProgress.TimeSpent)
	assert.True(t, result.LessonProgress.IsCompleted)
	assert.Equal(t, 1, result.CourseProgress.CompletedLessons)
	assert.Equal(t, int64(90), result.Enrollment.TimeSpent)
}

func TestCompleteLessonValidation(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	_, err := svc.CompleteLesson(7, model.Student, enrollment.ID, 101, CompleteLessonRequest{TimeSpent: -5})
	assert.ErrorContains(t, err, "timeSpent")

	bad := 1.5
	_, err = svc.CompleteLesson(7, model.Student, enrollment.ID, 101, CompleteLessonRequest{VideoProgress: &bad})
	assert.ErrorContains(t, err, "videoProgress")

	_, err = svc.CompleteLesson(7, model.Student, 999, 101, CompleteLessonRequest{})
	assert.ErrorContains(t, err, "enrollment not found")

	// 课时不属于该课程
	_, err = svc.CompleteLesson(7, model.Student, enrollment.ID, 9999, CompleteLessonRequest{})
	assert.ErrorContains(t, err, "lesson not in this course")
}

func TestCompleteLessonAuthorization(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	// 其他学生被拒绝
	_, err := svc.CompleteLesson(8, model.Student, enrollment.ID, 101, CompleteLessonRequest{})
	assert.ErrorContains(t, err, "permission denied")

	// 管理员可代操作
	_, err = svc.CompleteLesson(8, model.Admin, enrollment.ID, 101, CompleteLessonRequest{})
	assert.NoError(t, err)
}

func TestCompleteModule(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	// A1 已有进度行（不应重复计时），A2 没有（按时长 180s 补记）
	_, err := svc.CompleteLesson(7, model.Student, enrollment.ID, 101, CompleteLessonRequest{TimeSpent: 60})
	require.NoError(t, err)

	result, err := svc.CompleteModule(7, model.Student, enrollment.ID, 10)
	require.NoError(t, err)

	assert.True(t, result.Module.IsCompleted)
	assert.Equal(t, 2, result.Module.CompletedLessons)
	assert.InDelta(t, 200.0/3, result.CourseProgress.Progress, 0.01)
	require.NotNil(t, result.NextModule)
	assert.Equal(t, uint(20), result.NextModule.ID)
	require.NotNil(t, result.NextLesson)
	assert.Equal(t, uint(201), result.NextLesson.ID)

	// 累计时长 = 单课时增量 60 + A2 补记的 180
	assert.Equal(t, int64(240), result.Enrollment.TimeSpent)

	// 已有行的 time_spent 未被改写，观看进度被拉满
	var a1 model.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, 101).First(&a1).Error)
	assert.Equal(t, 60, a1.TimeSpent)
	assert.InDelta(t, 1.0, a1.VideoProgress, 0.001)
}

func TestCompleteModuleDefaultSeconds(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	// B1 未配置时长：补记默认 300 秒
	result, err := svc.CompleteModule(7, model.Student, enrollment.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(300), result.Enrollment.TimeSpent)
}

func TestCompleteModuleOutOfOrder(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	// 模块A未动，直接补完模块B：只有B的课时完成，课程 1/3
	result, err := svc.CompleteModule(7, model.Student, enrollment.ID, 20)
	require.NoError(t, err)
	assert.True(t, result.Module.IsCompleted)
	assert.InDelta(t, 100.0/3, result.CourseProgress.Progress, 0.01)
	assert.False(t, result.CourseProgress.IsCompleted)
	assert.Equal(t, model.EnrollmentInProgress, result.Enrollment.Status)

	// 模块A不受影响
	var count int64
	require.NoError(t, db.Model(&model.LessonProgress{}).
		Where("enrollment_id = ? AND lesson_id IN ?", enrollment.ID, []uint{101, 102}).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// B 已是最后一个模块：没有下一模块
	assert.Nil(t, result.NextModule)
	assert.Nil(t, result.NextLesson)

	_, err = svc.CompleteModule(7, model.Student, enrollment.ID, 9999)
	assert.ErrorContains(t, err, "module not in this course")
}

func TestGetEnrollmentProgress(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	// 尚无进度：下一课时是第一个模块的第一课时
	view, err := svc.GetEnrollmentProgress(7, model.Student, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Course.TotalLessons)
	assert.Equal(t, 0, view.Course.CompletedLessons)
	require.NotNil(t, view.NextLesson)
	assert.Equal(t, uint(101), view.NextLesson.ID)
	assert.Len(t, view.Modules, 2)

	_, err = svc.CompleteLesson(7, model.Student, enrollment.ID, 101, CompleteLessonRequest{})
	require.NoError(t, err)

	view, err = svc.GetEnrollmentProgress(7, model.Student, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Course.CompletedLessons)
	assert.InDelta(t, 100.0/3, view.Enrollment.Progress, 0.01)
	require.NotNil(t, view.NextLesson)
	assert.Equal(t, uint(102), view.NextLesson.ID)
}

// 进度始终等于已完成课时占比（完成调用后立即成立的重算不变式）
func TestProgressMatchesCompletionRatio(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, 7, course.ID)
	svc := newProgressService(db)

	lessons := []uint{201, 101, 102}
	for i, lessonID := range lessons {
		result, err := svc.CompleteLesson(7, model.Student, enrollment.ID, lessonID, CompleteLessonRequest{})
		require.NoError(t, err)

		var completed int64
		require.NoError(t, db.Model(&model.LessonProgress{}).
			Where("enrollment_id = ? AND is_completed = ?", enrollment.ID, true).
			Count(&completed).Error)
		assert.Equal(t, int64(i+1), completed)
		assert.InDelta(t, float64(completed)/3*100, result.Enrollment.Progress, 0.01)
	}
}
