package service

import (
	"learnhub_backend/internal/model"
)

// lessonLocation 课时在课程结构中的位置
type lessonLocation struct {
	Module    *model.CourseModule
	ModuleIdx int // 模块在课程有序模块列表中的下标
	LessonIdx int // 课时在模块有序课时列表中的下标
}

// courseIndex 课程结构的一次性预计算索引，避免每次查找都做嵌套线性扫描
type courseIndex struct {
	Course     *model.Course
	ModuleByID map[uint]*model.CourseModule
	ModuleIdx  map[uint]int
	LessonLoc  map[uint]lessonLocation
}

func buildCourseIndex(course *model.Course) *courseIndex {
	idx := &courseIndex{
		Course:     course,
		ModuleByID: make(map[uint]*model.CourseModule, len(course.Modules)),
		ModuleIdx:  make(map[uint]int, len(course.Modules)),
		LessonLoc:  make(map[uint]lessonLocation),
	}
	for mi := range course.Modules {
		module := &course.Modules[mi]
		idx.ModuleByID[module.ID] = module
		idx.ModuleIdx[module.ID] = mi
		for li := range module.Lessons {
			idx.LessonLoc[module.Lessons[li].ID] = lessonLocation{
				Module:    module,
				ModuleIdx: mi,
				LessonIdx: li,
			}
		}
	}
	return idx
}

// ModuleStats 单个模块的完成度
type ModuleStats struct {
	ModuleID         uint    `json:"moduleId"`
	Title            string  `json:"title"`
	OrderIndex       int     `json:"orderIndex"`
	CompletedLessons int     `json:"completedLessons"`
	TotalLessons     int     `json:"totalLessons"`
	Progress         float64 `json:"progress"`
	IsCompleted      bool    `json:"isCompleted"`
}

// CourseStats 整门课程的完成度
type CourseStats struct {
	CompletedLessons int     `json:"completedLessons"`
	TotalLessons     int     `json:"totalLessons"`
	Progress         float64 `json:"progress"`
	IsCompleted      bool    `json:"isCompleted"`
}

// computeProgress 纯聚合：根据课程结构和已完成课时集合重算各模块及课程百分比。
// 每次调用都从当前完成事实全量重算，不做增量修补，保证不会与底层数据漂移。
// 不属于任何模块的课时 id（脏数据）既不计入分母也不计入分子。
func computeProgress(idx *courseIndex, completed map[uint]bool) ([]ModuleStats, CourseStats) {
	modules := make([]ModuleStats, 0, len(idx.Course.Modules))
	var courseTotal, courseCompleted int

	for mi := range idx.Course.Modules {
		module := &idx.Course.Modules[mi]
		total := len(module.Lessons)
		done := 0
		for li := range module.Lessons {
			if completed[module.Lessons[li].ID] {
				done++
			}
		}

		// 零课时模块视为 0%，不做除零
		progress := 0.0
		if total > 0 {
			progress = float64(done) / float64(total) * 100
		}

		modules = append(modules, ModuleStats{
			ModuleID:         module.ID,
			Title:            module.Title,
			OrderIndex:       module.OrderIndex,
			CompletedLessons: done,
			TotalLessons:     total,
			Progress:         progress,
			IsCompleted:      progress >= 100,
		})

		courseTotal += total
		courseCompleted += done
	}

	courseProgress := 0.0
	if courseTotal > 0 {
		courseProgress = float64(courseCompleted) / float64(courseTotal) * 100
	}

	return modules, CourseStats{
		CompletedLessons: courseCompleted,
		TotalLessons:     courseTotal,
		Progress:         courseProgress,
		IsCompleted:      courseProgress >= 100,
	}
}

// moduleCompletionSet 导航层只关心每个模块是否已完成
func moduleCompletionSet(modules []ModuleStats) map[uint]bool {
	set := make(map[uint]bool, len(modules))
	for _, m := range modules {
		set[m.ModuleID] = m.IsCompleted
	}
	return set
}
