package service

import (
	"learnhub_backend/internal/model"
)

// NextStep 学员接下来应看到的位置。两个字段都可能为空：
// 当前模块未完成且已是模块内最后一课时，或者整门课已到最后一个模块的尽头。
type NextStep struct {
	NextModule *model.CourseModule `json:"nextModule"`
	NextLesson *model.Lesson       `json:"nextLesson"`
}

// resolveNext 纯导航：基于刚操作的模块/课时与各模块完成情况做两级判定。
// 1) 当前模块未完成：取模块内下一课时（若刚操作的不是最后一课时）
// 2) 当前模块已完成：取课程内下一模块及其第一课时；最后一个模块则两者皆空
// 单课时完成与整模块完成两个入口共用同一规则。
func resolveNext(idx *courseIndex, currentModuleID, currentLessonID uint, moduleCompleted map[uint]bool) NextStep {
	module, ok := idx.ModuleByID[currentModuleID]
	if !ok {
		return NextStep{}
	}

	if !moduleCompleted[currentModuleID] {
		loc, ok := idx.LessonLoc[currentLessonID]
		if !ok || loc.Module.ID != currentModuleID {
			return NextStep{}
		}
		if loc.LessonIdx+1 < len(module.Lessons) {
			return NextStep{NextLesson: &module.Lessons[loc.LessonIdx+1]}
		}
		return NextStep{}
	}

	mi := idx.ModuleIdx[currentModuleID]
	if mi+1 >= len(idx.Course.Modules) {
		// 课程边界：最后一个模块已完成
		return NextStep{}
	}

	next := &idx.Course.Modules[mi+1]
	step := NextStep{NextModule: next}
	if len(next.Lessons) > 0 {
		step.NextLesson = &next.Lessons[0]
	}
	return step
}
