package model

// Course 课程结构（只读），模块与课时均按 order_index 升序
type Course struct {
	BaseModel
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Modules     []CourseModule `gorm:"foreignKey:CourseID" json:"modules"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseModule struct {
	BaseModel
	CourseID   uint     `gorm:"index;not null" json:"courseId"`
	Title      string   `gorm:"size:255;not null" json:"title"`
	OrderIndex int      `gorm:"index;default:0" json:"orderIndex"`
	Lessons    []Lesson `gorm:"foreignKey:ModuleID" json:"lessons"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

type Lesson struct {
	BaseModel
	ModuleID   uint   `gorm:"index;not null" json:"moduleId"`
	Title      string `gorm:"size:255;not null" json:"title"`
	OrderIndex int    `gorm:"index;default:0" json:"orderIndex"`
	Duration   int    `gorm:"default:0" json:"duration"` // 课时时长（秒）
	VideoURL   string `gorm:"size:512" json:"videoUrl"`
}

func (Lesson) TableName() string {
	return "lessons"
}
