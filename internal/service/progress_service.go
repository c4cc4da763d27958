package service

import (
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

type ProgressService struct {
	EnrollmentRepo       *repository.EnrollmentRepository
	CourseRepo           *repository.CourseRepository
	LessonProgressRepo   *repository.LessonProgressRepository
	DefaultLessonSeconds int
}

func NewProgressService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	lessonProgressRepo *repository.LessonProgressRepository,
	defaultLessonSeconds int,
) *ProgressService {
	if defaultLessonSeconds <= 0 {
		defaultLessonSeconds = util.DefaultLessonSeconds
	}
	return &ProgressService{
		EnrollmentRepo:       enrollmentRepo,
		CourseRepo:           courseRepo,
		LessonProgressRepo:   lessonProgressRepo,
		DefaultLessonSeconds: defaultLessonSeconds,
	}
}

type CompleteLessonRequest struct {
	TimeSpent     int      `json:"timeSpent"`     // 本次增量（秒）
	VideoProgress *float64 `json:"videoProgress"` // 缺省按 1.0 处理
}

type LessonCompletionResult struct {
	LessonProgress *model.LessonProgress `json:"lessonProgress"`
	ModuleProgress ModuleStats           `json:"moduleProgress"`
	CourseProgress CourseStats           `json:"courseProgress"`
	NextLesson     *model.Lesson         `json:"nextLesson"`
	Enrollment     *model.Enrollment     `json:"enrollment"`
}

type ModuleCompletionResult struct {
	Module         ModuleStats         `json:"module"`
	CourseProgress CourseStats         `json:"courseProgress"`
	NextModule     *model.CourseModule `json:"nextModule"`
	NextLesson     *model.Lesson       `json:"nextLesson"`
	Enrollment     *model.Enrollment   `json:"enrollment"`
}

type EnrollmentProgressResult struct {
	Enrollment *model.Enrollment `json:"enrollment"`
	Course     CourseStats       `json:"course"`
	Modules    []ModuleStats     `json:"modules"`
	NextLesson *model.Lesson     `json:"nextLesson"`
}

// loadAuthorizedEnrollment 完成类操作共用的前置检查：
// 报名必须存在，且操作者是报名学生本人或管理员。
func (s *ProgressService) loadAuthorizedEnrollment(enrollmentID, actorID uint, actorRole model.UserRole) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	if enrollment.StudentID != actorID && actorRole != model.Admin {
		return nil, util.ErrPermissionDenied
	}
	return enrollment, nil
}

// CompleteLesson 单课时完成：校验归属后幂等写入课时进度，
// 随后全量重算模块/课程聚合、解析下一步并落回报名记录。
func (s *ProgressService) CompleteLesson(actorID uint, actorRole model.UserRole, enrollmentID, lessonID uint, req CompleteLessonRequest) (*LessonCompletionResult, error) {
	if enrollmentID == 0 || lessonID == 0 {
		return nil, util.ErrInvalidID
	}
	if req.TimeSpent < 0 {
		return nil, util.ErrInvalidTimeSpent
	}
	videoProgress := 1.0
	if req.VideoProgress != nil {
		videoProgress = *req.VideoProgress
	}
	if videoProgress < 0 || videoProgress > 1 {
		return nil, util.ErrInvalidVideoProgress
	}

	enrollment, err := s.loadAuthorizedEnrollment(enrollmentID, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	course, err := s.CourseRepo.FindWithModulesAndLessons(enrollment.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	idx := buildCourseIndex(course)
	loc, ok := idx.LessonLoc[lessonID]
	if !ok {
		return nil, util.ErrLessonNotInCourse
	}

	now := time.Now()
	if err := s.LessonProgressRepo.Upsert(&model.LessonProgress{
		EnrollmentID:  enrollmentID,
		LessonID:      lessonID,
		IsCompleted:   true,
		CompletedAt:   &now,
		TimeSpent:     req.TimeSpent,
		VideoProgress: videoProgress,
		LastWatchedAt: now,
	}); err != nil {
		return nil, err
	}

	modules, courseStats, next, err := s.recompute(enrollment, idx, loc.Module.ID, lessonID)
	if err != nil {
		return nil, err
	}

	if err := s.applyEnrollmentState(enrollment, courseStats, next, loc.Module.ID, int64(req.TimeSpent)); err != nil {
		return nil, err
	}

	updated, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	lessonProgress, err := s.LessonProgressRepo.FindByEnrollmentAndLesson(enrollmentID, lessonID)
	if err != nil {
		return nil, err
	}

	return &LessonCompletionResult{
		LessonProgress: lessonProgress,
		ModuleProgress: statsForModule(modules, loc.Module.ID),
		CourseProgress: courseStats,
		NextLesson:     next.NextLesson,
		Enrollment:     updated,
	}, nil
}

// CompleteModule 整模块补完：模块内所有课时在一个事务里写完成行，
// 未有进度行的课时按课时时长（缺省 DefaultLessonSeconds）补记学习时间，
// 已有进度行的课时只标记完成、不重复计时。之后与单课时完成同一条
// 聚合→导航→状态机流水线，按整门课重算。
func (s *ProgressService) CompleteModule(actorID uint, actorRole model.UserRole, enrollmentID, moduleID uint) (*ModuleCompletionResult, error) {
	if enrollmentID == 0 || moduleID == 0 {
		return nil, util.ErrInvalidID
	}

	enrollment, err := s.loadAuthorizedEnrollment(enrollmentID, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	course, err := s.CourseRepo.FindWithModulesAndLessons(enrollment.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	idx := buildCourseIndex(course)
	module, ok := idx.ModuleByID[moduleID]
	if !ok {
		return nil, util.ErrModuleNotInCourse
	}

	synthesized, err := s.LessonProgressRepo.CompleteModuleLessons(enrollmentID, module.Lessons, s.DefaultLessonSeconds)
	if err != nil {
		return nil, err
	}

	modules, courseStats, next, err := s.recompute(enrollment, idx, moduleID, 0)
	if err != nil {
		return nil, err
	}

	if err := s.applyEnrollmentState(enrollment, courseStats, next, moduleID, synthesized); err != nil {
		return nil, err
	}

	updated, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}

	return &ModuleCompletionResult{
		Module:         statsForModule(modules, moduleID),
		CourseProgress: courseStats,
		NextModule:     next.NextModule,
		NextLesson:     next.NextLesson,
		Enrollment:     updated,
	}, nil
}

// GetEnrollmentProgress 只读视图：当前聚合状态加报名记录上解析好的下一课时。
// 尚未产生任何进度时（PENDING）下一课时取第一个模块的第一课时。
func (s *ProgressService) GetEnrollmentProgress(actorID uint, actorRole model.UserRole, enrollmentID uint) (*EnrollmentProgressResult, error) {
	if enrollmentID == 0 {
		return nil, util.ErrInvalidID
	}

	enrollment, err := s.loadAuthorizedEnrollment(enrollmentID, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	course, err := s.CourseRepo.FindWithModulesAndLessons(enrollment.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	idx := buildCourseIndex(course)
	completed, err := s.LessonProgressRepo.CompletedLessonIDs(enrollmentID)
	if err != nil {
		return nil, err
	}
	modules, courseStats := computeProgress(idx, completed)

	var nextLesson *model.Lesson
	if enrollment.CurrentLessonID != nil {
		if loc, ok := idx.LessonLoc[*enrollment.CurrentLessonID]; ok {
			nextLesson = &loc.Module.Lessons[loc.LessonIdx]
		}
	} else if enrollment.Status == model.EnrollmentPending {
		for mi := range course.Modules {
			if len(course.Modules[mi].Lessons) > 0 {
				nextLesson = &course.Modules[mi].Lessons[0]
				break
			}
		}
	}

	return &EnrollmentProgressResult{
		Enrollment: enrollment,
		Course:     courseStats,
		Modules:    modules,
		NextLesson: nextLesson,
	}, nil
}

// recompute 写入之后的共用后半程：全量重算聚合并解析下一步
func (s *ProgressService) recompute(enrollment *model.Enrollment, idx *courseIndex, moduleID, lessonID uint) ([]ModuleStats, CourseStats, NextStep, error) {
	completed, err := s.LessonProgressRepo.CompletedLessonIDs(enrollment.ID)
	if err != nil {
		return nil, CourseStats{}, NextStep{}, err
	}

	modules, courseStats := computeProgress(idx, completed)
	next := resolveNext(idx, moduleID, lessonID, moduleCompletionSet(modules))
	return modules, courseStats, next, nil
}

// applyEnrollmentState 报名状态机：
// PENDING -> IN_PROGRESS（首次进度写入） -> COMPLETED（课程聚合到 100%，终态）。
// progress 直接取重算结果；time_spent 只做原子累加，从不覆盖。
func (s *ProgressService) applyEnrollmentState(enrollment *model.Enrollment, courseStats CourseStats, next NextStep, actedModuleID uint, timeSpentDelta int64) error {
	upd := repository.EnrollmentUpdate{
		Status:         model.EnrollmentInProgress,
		Progress:       courseStats.Progress,
		TimeSpentDelta: timeSpentDelta,
	}

	now := time.Now()
	if enrollment.StartedAt == nil {
		upd.StartedAt = &now
	}

	// 未解析出下一模块时停留在刚操作的模块上
	moduleID := actedModuleID
	if next.NextModule != nil {
		moduleID = next.NextModule.ID
	}
	upd.CurrentModuleID = &moduleID
	if next.NextLesson != nil {
		lessonID := next.NextLesson.ID
		upd.CurrentLessonID = &lessonID
	}

	if courseStats.IsCompleted {
		upd.Status = model.EnrollmentCompleted
		if enrollment.CompletedAt == nil {
			upd.CompletedAt = &now
		}
	} else if enrollment.Status == model.EnrollmentCompleted {
		// COMPLETED 为终态，不回退
		upd.Status = model.EnrollmentCompleted
	}

	return s.EnrollmentRepo.ApplyProgress(enrollment.ID, upd)
}

func statsForModule(modules []ModuleStats, moduleID uint) ModuleStats {
	for _, m := range modules {
		if m.ModuleID == moduleID {
			return m
		}
	}
	return ModuleStats{ModuleID: moduleID}
}
