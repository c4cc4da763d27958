package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary 提交测验
// @Description 判分并创建一次测验提交，返回得分、是否通过与逐题结果
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param body body service.QuizSubmissionRequest true "报名ID与答案列表"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("quizId"))
	if quizID == 0 {
		util.BadRequest(ctx, "Invalid quiz ID")
		return
	}

	var req service.QuizSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if len(req.Answers) == 0 {
		util.BadRequest(ctx, "answers are required")
		return
	}

	// 学生只能以本人身份提交；管理员可代指定学生补录
	studentID := user.UserID
	if user.Role == model.Admin && req.StudentID != 0 {
		studentID = req.StudentID
	}

	result, err := c.QuizService.SubmitQuiz(quizID, req.EnrollmentID, studentID, req.Answers)
	if err != nil {
		serviceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
