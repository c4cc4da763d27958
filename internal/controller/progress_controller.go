package controller

import (
	"errors"
	"net/http"

	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// serviceError 把服务层哨兵错误映射到统一响应
func serviceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidID),
		errors.Is(err, util.ErrInvalidTimeSpent),
		errors.Is(err, util.ErrInvalidVideoProgress):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrEnrollmentNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrLessonNotInCourse),
		errors.Is(err, util.ErrModuleNotInCourse):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAlreadyEnrolled):
		util.Error(ctx, http.StatusConflict, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 完成课时
// @Description 将指定课时标记为完成并返回重算后的模块/课程进度与下一课时
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param enrollmentId path int true "报名ID"
// @Param lessonId path int true "课时ID"
// @Param body body service.CompleteLessonRequest false "本次学习时长与观看进度"
// @Success 200 {object} util.Response
// @Router /api/enrollments/{enrollmentId}/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollmentID := util.MustParseUint(ctx.Param("enrollmentId"))
	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if enrollmentID == 0 {
		util.BadRequest(ctx, "Invalid enrollment ID")
		return
	}
	if lessonID == 0 {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	var req service.CompleteLessonRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.ProgressService.CompleteLesson(user.UserID, user.Role, enrollmentID, lessonID, req)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 完成整个模块
// @Description 将模块内全部课时标记为完成并返回课程级进度与下一模块
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param enrollmentId path int true "报名ID"
// @Param moduleId path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/enrollments/{enrollmentId}/modules/{moduleId}/complete [post]
func (c *ProgressController) CompleteModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollmentID := util.MustParseUint(ctx.Param("enrollmentId"))
	moduleID := util.MustParseUint(ctx.Param("moduleId"))
	if enrollmentID == 0 {
		util.BadRequest(ctx, "Invalid enrollment ID")
		return
	}
	if moduleID == 0 {
		util.BadRequest(ctx, "Invalid module ID")
		return
	}

	result, err := c.ProgressService.CompleteModule(user.UserID, user.Role, enrollmentID, moduleID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 查询报名进度
// @Description 返回报名记录、课程/各模块完成度与下一课时
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param enrollmentId path int true "报名ID"
// @Success 200 {object} util.Response
// @Router /api/enrollments/{enrollmentId}/progress [get]
func (c *ProgressController) GetEnrollmentProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollmentID := util.MustParseUint(ctx.Param("enrollmentId"))
	if enrollmentID == 0 {
		util.BadRequest(ctx, "Invalid enrollment ID")
		return
	}

	result, err := c.ProgressService.GetEnrollmentProgress(user.UserID, user.Role, enrollmentID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
