package controller

import (
	"errors"

	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CourseController struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseController(courseRepo *repository.CourseRepository) *CourseController {
	return &CourseController{CourseRepo: courseRepo}
}

// @Summary 获取课程结构
// @Description 返回课程及其有序的模块、课时列表
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	course, err := c.CourseRepo.FindWithModulesAndLessons(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, course)
}
