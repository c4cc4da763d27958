package repository

import (
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LessonProgressRepository struct {
	DB *gorm.DB
}

func NewLessonProgressRepository(db *gorm.DB) *LessonProgressRepository {
	return &LessonProgressRepository{DB: db}
}

// Upsert 按 (enrollment_id, lesson_id) 唯一键写入课时进度。
// 冲突时走更新分支：time_spent 累加本次增量，其余字段覆盖刷新。
// 唯一键冲突由数据库裁决，两个并发创建只会有一个成功，另一个转为更新。
func (r *LessonProgressRepository) Upsert(progress *model.LessonProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_completed":    true,
			"completed_at":    gorm.Expr("COALESCE(completed_at, ?)", time.Now()),
			"time_spent":      gorm.Expr("time_spent + ?", progress.TimeSpent),
			"video_progress":  progress.VideoProgress,
			"last_watched_at": time.Now(),
			"updated_at":      time.Now(),
		}),
	}).Create(progress).Error
}

// MarkCompletedKeepingTime 整模块补完时用于已有进度行：
// 只标记完成并把观看进度拉满，不改动已累计的 time_spent。
func (r *LessonProgressRepository) MarkCompletedKeepingTime(tx *gorm.DB, progressID uint) error {
	return tx.Model(&model.LessonProgress{}).
		Where("id = ?", progressID).
		Updates(map[string]interface{}{
			"is_completed":    true,
			"completed_at":    gorm.Expr("COALESCE(completed_at, ?)", time.Now()),
			"video_progress":  1.0,
			"last_watched_at": time.Now(),
		}).Error
}

func (r *LessonProgressRepository) FindByEnrollmentAndLesson(enrollmentID, lessonID uint) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	err := r.DB.Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// CompletedLessonIDs 返回该报名下所有已完成课时的 id 集合。
// 聚合层每次都基于这份全量事实重算百分比，不做增量修补。
func (r *LessonProgressRepository) CompletedLessonIDs(enrollmentID uint) (map[uint]bool, error) {
	var lessonIDs []uint
	err := r.DB.Model(&model.LessonProgress{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollmentID, true).
		Pluck("lesson_id", &lessonIDs).Error
	if err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		completed[id] = true
	}
	return completed, nil
}

// CompleteModuleLessons 整模块补完：对模块内每个课时写完成行，单事务执行。
// 任一课时写失败即整体回滚，不允许"模块完成"与缺行并存。
// 返回本次实际补记的学习秒数（已有进度行的课时不重复计时）。
func (r *LessonProgressRepository) CompleteModuleLessons(enrollmentID uint, lessons []model.Lesson, defaultSeconds int) (int64, error) {
	var synthesized int64

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, lesson := range lessons {
			var existing model.LessonProgress
			err := tx.Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lesson.ID).
				First(&existing).Error

			if err == nil {
				if err := r.MarkCompletedKeepingTime(tx, existing.ID); err != nil {
					return err
				}
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}

			seconds := lesson.Duration
			if seconds <= 0 {
				seconds = defaultSeconds
			}
			progress := &model.LessonProgress{
				EnrollmentID:  enrollmentID,
				LessonID:      lesson.ID,
				IsCompleted:   true,
				CompletedAt:   &now,
				TimeSpent:     seconds,
				VideoProgress: 1.0,
				LastWatchedAt: now,
			}
			if err := tx.Create(progress).Error; err != nil {
				return err
			}
			synthesized += int64(seconds)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return synthesized, nil
}
