package repository

import (
	"fmt"
	"testing"
	"time"

	"learnhub_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.LessonProgress{}, &model.Lesson{}))
	return db
}

func TestUpsertCreatesSingleRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonProgressRepository(db)
	now := time.Now()

	for _, delta := range []int{60, 30} {
		require.NoError(t, repo.Upsert(&model.LessonProgress{
			EnrollmentID:  1,
			LessonID:      101,
			IsCompleted:   true,
			CompletedAt:   &now,
			TimeSpent:     delta,
			VideoProgress: 1.0,
			LastWatchedAt: now,
		}))
	}

	var rows []model.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ?", 1).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 90, rows[0].TimeSpent)
	assert.True(t, rows[0].IsCompleted)
	assert.NotNil(t, rows[0].CompletedAt)
}

func TestUpsertKeepsFirstCompletedAt(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonProgressRepository(db)
	first := time.Now().Add(-time.Hour)

	require.NoError(t, repo.Upsert(&model.LessonProgress{
		EnrollmentID: 1, LessonID: 101, IsCompleted: true,
		CompletedAt: &first, TimeSpent: 10, VideoProgress: 0.5, LastWatchedAt: first,
	}))
	require.NoError(t, repo.Upsert(&model.LessonProgress{
		EnrollmentID: 1, LessonID: 101, IsCompleted: true,
		TimeSpent: 10, VideoProgress: 1.0, LastWatchedAt: time.Now(),
	}))

	var row model.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", 1, 101).First(&row).Error)
	require.NotNil(t, row.CompletedAt)
	assert.WithinDuration(t, first, *row.CompletedAt, time.Second)
	assert.InDelta(t, 1.0, row.VideoProgress, 0.001)
}

func TestCompleteModuleLessonsSynthesizesTime(t *testing.T) {
	db := newTestDB(t)
	repo := NewLessonProgressRepository(db)

	lessons := []model.Lesson{
		{BaseModel: model.BaseModel{ID: 1}, Duration: 120},
		{BaseModel: model.BaseModel{ID: 2}, Duration: 0}, // 无时长，取默认值
		{BaseModel: model.BaseModel{ID: 3}, Duration: 60},
	}

	// 课时 3 已有进度行，不应重复计时
	require.NoError(t, repo.Upsert(&model.LessonProgress{
		EnrollmentID: 5, LessonID: 3, TimeSpent: 42, VideoProgress: 0.3, LastWatchedAt: time.Now(),
	}))

	synthesized, err := repo.CompleteModuleLessons(5, lessons, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(420), synthesized) // 120 + 300

	completed, err := repo.CompletedLessonIDs(5)
	require.NoError(t, err)
	assert.Len(t, completed, 3)

	var existing model.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", 5, 3).First(&existing).Error)
	assert.Equal(t, 42, existing.TimeSpent)
	assert.InDelta(t, 1.0, existing.VideoProgress, 0.001)
	assert.True(t, existing.IsCompleted)
}
