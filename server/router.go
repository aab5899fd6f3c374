package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/server/common"
	"github.com/tunga-io/tunga/server/handles"
	"github.com/tunga-io/tunga/server/middlewares"
)

func Init(e *gin.Engine) {
	Cors(e)
	e.Use(middlewares.RequestID)
	e.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	api := e.Group("/api", middlewares.Auth)
	api.GET("/me", handles.GetMe)

	task := api.Group("/task")
	task.GET("", handles.ListTasks)
	task.POST("", handles.CreateTask)
	task.GET("/:id", handles.GetTask)
	task.PATCH("/:id", handles.UpdateTask)
	task.DELETE("/:id", handles.DeleteTask)
	task.GET("/:id/meta", handles.GetTaskMeta)
	task.GET("/:id/milestones", handles.ListMilestones)
	task.POST("/:id/milestones", handles.CreateMilestone)
	task.GET("/:id/updates", handles.ListTaskUpdates)
	task.POST("/:id/updates", handles.CreateTaskUpdate)
	task.GET("/:id/applications", handles.ListApplications)
	task.POST("/:id/applications", handles.CreateApplication)

	milestone := api.Group("/milestone")
	milestone.GET("/:id", handles.GetMilestone)
	milestone.PUT("/:id", handles.UpdateMilestone)
	milestone.DELETE("/:id", handles.DeleteMilestone)

	application := api.Group("/application")
	application.GET("/:id", handles.GetApplication)
	application.PATCH("/:id", handles.UpdateApplication)
	application.DELETE("/:id", handles.DeleteApplication)

	admin := api.Group("/admin", middlewares.AuthAdmin)
	admin.POST("/reminders/send", handles.SendReminders)
	handles.SetupJobRoute(admin.Group("/job"))

	e.NoRoute(func(c *gin.Context) {
		common.ErrorStrResp(c, "not found", 404)
	})
}

func Cors(r *gin.Engine) {
	config := cors.DefaultConfig()
	config.AllowOrigins = conf.Conf.Cors.AllowOrigins
	config.AllowHeaders = conf.Conf.Cors.AllowHeaders
	config.AllowMethods = conf.Conf.Cors.AllowMethods
	r.Use(cors.New(config))
}
