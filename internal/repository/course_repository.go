package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseRepository struct {
	DB       *gorm.DB
	RDB      *redis.Client
	CacheTTL time.Duration
}

func NewCourseRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *CourseRepository {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &CourseRepository{DB: db, RDB: rdb, CacheTTL: cacheTTL}
}

func courseStructureKey(courseID uint) string {
	return "course:structure:" + strconv.FormatUint(uint64(courseID), 10)
}

// FindWithModulesAndLessons 获取课程结构（模块、课时均按 order_index 升序）。
// 结构读多写少，带 Redis 缓存；缓存故障时直接回源数据库。
func (r *CourseRepository) FindWithModulesAndLessons(courseID uint) (*model.Course, error) {
	ctx := context.Background()

	if r.RDB != nil {
		if raw, err := r.RDB.Get(ctx, courseStructureKey(courseID)).Result(); err == nil {
			var cached model.Course
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var course model.Course
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.order_index ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.order_index ASC")
		}).
		First(&course, courseID).Error
	if err != nil {
		return nil, err
	}

	if r.RDB != nil {
		if raw, err := json.Marshal(&course); err == nil {
			if err := r.RDB.Set(ctx, courseStructureKey(courseID), raw, r.CacheTTL).Err(); err != nil {
				logger.Log.Warn("course structure cache write failed",
					zap.Uint("courseId", courseID), zap.Error(err))
			}
		}
	}

	return &course, nil
}

// InvalidateStructure 课程结构变更后清理缓存（由外部的课程编辑方调用）
func (r *CourseRepository) InvalidateStructure(courseID uint) {
	if r.RDB == nil {
		return
	}
	if err := r.RDB.Del(context.Background(), courseStructureKey(courseID)).Err(); err != nil {
		logger.Log.Warn("course structure cache invalidation failed",
			zap.Uint("courseId", courseID), zap.Error(err))
	}
}

func (r *CourseRepository) FindByID(courseID uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, courseID).Error; err != nil {
		return nil, err
	}
	return &course, nil
}
