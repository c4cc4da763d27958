package app

import (
	"learnhub_backend/docs"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"

	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 课程与报名
		authGroup.GET("/courses/:courseId", c.course.GetCourse)
		authGroup.POST("/courses/:courseId/enroll", c.enrollment.Enroll)
		authGroup.GET("/courses/:courseId/enrollment", c.enrollment.GetMyEnrollment)

		// 学习进度
		authGroup.POST("/enrollments/:enrollmentId/lessons/:lessonId/complete", c.progress.CompleteLesson)
		authGroup.POST("/enrollments/:enrollmentId/modules/:moduleId/complete", c.progress.CompleteModule)
		authGroup.GET("/enrollments/:enrollmentId/progress", c.progress.GetEnrollmentProgress)

		// 测验
		authGroup.POST("/quizzes/:quizId/submit", c.quiz.SubmitQuiz)
	}
}
