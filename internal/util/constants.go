package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 整模块补完时，对没有进度记录的课时按时长补记学习时间；
// 课时未配置时长时使用该默认值（可在 progress 配置段覆盖）。
const DefaultLessonSeconds = 300
