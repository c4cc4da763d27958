package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// @Summary 报名课程
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{courseId}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	enrollment, err := c.EnrollmentService.Enroll(user.UserID, courseID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Created(ctx, enrollment)
}

// @Summary 查询本人对某课程的报名
// @Tags 报名
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{courseId}/enrollment [get]
func (c *EnrollmentController) GetMyEnrollment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	enrollment, err := c.EnrollmentService.GetByStudentAndCourse(user.UserID, courseID)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}
