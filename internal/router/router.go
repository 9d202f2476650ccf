package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sanjeevni-health/sanjeevni/internal/handlers"
	"github.com/sanjeevni-health/sanjeevni/internal/middleware"
	"github.com/sanjeevni-health/sanjeevni/internal/utils"
)

func NewRouter(allowedOrigins []string) *gin.Engine {
	utils.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/password-reset", handlers.RequestPasswordReset)
			auth.POST("/password-reset/:uid/:token", handlers.ConfirmPasswordReset)
			auth.POST("/refresh", middleware.AuthMiddleware(), handlers.RefreshToken)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteAccount)
		}

		protected := api.Group("", middleware.AuthMiddleware())

		profile := protected.Group("/profile")
		{
			profile.GET("", handlers.GetProfile)
			profile.PATCH("", handlers.UpdateProfile)
			profile.POST("/change-password", handlers.ChangePassword)
			profile.POST("/push-token", handlers.UpdatePushToken)
			profile.PUT("/picture", handlers.UploadProfilePicture)
		}

		reminders := protected.Group("/reminders")
		{
			reminders.POST("", handlers.CreateReminder)
			reminders.GET("", handlers.ListReminders)
			reminders.GET("/due_today", handlers.DueToday)
			reminders.GET("/summary", handlers.ReminderSummary)
			reminders.GET("/adherence_stats", handlers.AdherenceStats)
			reminders.GET("/overdue_pills", handlers.OverduePills)
			reminders.GET("/:id", handlers.GetReminder)
			reminders.PATCH("/:id", handlers.UpdateReminder)
			reminders.DELETE("/:id", handlers.DeleteReminder)
			reminders.POST("/:id/mark_taken", handlers.MarkTaken)
			reminders.POST("/:id/snooze", handlers.Snooze)
		}

		logs := protected.Group("/reminder-logs")
		{
			logs.POST("", handlers.CreateReminderLog)
			logs.GET("", handlers.ListReminderLogs)
			logs.GET("/:id", handlers.GetReminderLog)
			logs.PATCH("/:id", handlers.UpdateReminderLog)
			logs.DELETE("/:id", handlers.DeleteReminderLog)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.POST("", handlers.CreateNotification)
			notifications.GET("", handlers.ListNotifications)
			notifications.GET("/unread_count", handlers.UnreadCount)
			notifications.POST("/send", handlers.SendNotification)
			notifications.GET("/:id", handlers.GetNotification)
			notifications.PATCH("/:id", handlers.UpdateNotification)
			notifications.DELETE("/:id", handlers.DeleteNotification)
			notifications.POST("/:id/mark_read", handlers.MarkNotificationRead)
		}

		templates := protected.Group("/templates")
		{
			templates.POST("", handlers.CreateTemplate)
			templates.GET("", handlers.ListTemplates)
			templates.GET("/:id", handlers.GetTemplate)
			templates.PATCH("/:id", handlers.UpdateTemplate)
			templates.DELETE("/:id", handlers.DeleteTemplate)
			templates.POST("/:id/render", handlers.RenderTemplate)
		}

		metrics := protected.Group("/health-metrics")
		{
			metrics.POST("", handlers.CreateHealthMetric)
			metrics.GET("", handlers.ListHealthMetrics)
			metrics.GET("/trends", handlers.HealthMetricTrends)
			metrics.GET("/summary", handlers.HealthMetricSummary)
			metrics.GET("/:id", handlers.GetHealthMetric)
			metrics.PATCH("/:id", handlers.UpdateHealthMetric)
			metrics.DELETE("/:id", handlers.DeleteHealthMetric)
		}

		data := protected.Group("/health-data")
		{
			data.POST("", handlers.CreateHealthData)
			data.GET("", handlers.ListHealthData)
			data.GET("/latest", handlers.LatestHealthData)
			data.GET("/trends", handlers.HealthDataTrends)
			data.GET("/:id", handlers.GetHealthData)
			data.PATCH("/:id", handlers.UpdateHealthData)
			data.DELETE("/:id", handlers.DeleteHealthData)
		}

		doctors := protected.Group("/doctors")
		{
			doctors.POST("", handlers.CreateDoctor)
			doctors.GET("", handlers.ListDoctors)
			doctors.GET("/:id", handlers.GetDoctor)
			doctors.PATCH("/:id", handlers.UpdateDoctor)
			doctors.DELETE("/:id", handlers.DeleteDoctor)
		}

		appointments := protected.Group("/appointments")
		{
			appointments.POST("", handlers.CreateAppointment)
			appointments.GET("", handlers.ListAppointments)
			appointments.GET("/upcoming", handlers.UpcomingAppointments)
			appointments.GET("/:id", handlers.GetAppointment)
			appointments.PATCH("/:id", handlers.UpdateAppointment)
			appointments.DELETE("/:id", handlers.DeleteAppointment)
		}

		mental := protected.Group("/mental-health")
		{
			mental.POST("", handlers.CreateMentalHealthEntry)
			mental.GET("", handlers.ListMentalHealthEntries)
			mental.GET("/trends", handlers.MentalHealthTrends)
			mental.GET("/:id", handlers.GetMentalHealthEntry)
			mental.PATCH("/:id", handlers.UpdateMentalHealthEntry)
			mental.DELETE("/:id", handlers.DeleteMentalHealthEntry)
		}

		goals := protected.Group("/goals")
		{
			goals.POST("", handlers.CreateGoal)
			goals.GET("", handlers.ListGoals)
			goals.GET("/progress_summary", handlers.GoalProgressSummary)
			goals.GET("/:id", handlers.GetGoal)
			goals.PATCH("/:id", handlers.UpdateGoal)
			goals.DELETE("/:id", handlers.DeleteGoal)
			goals.POST("/:id/update_progress", handlers.UpdateGoalProgress)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/summary", handlers.DashboardSummary)
			dashboard.GET("/stats", handlers.DashboardStats)
		}

		widgets := protected.Group("/widgets")
		{
			widgets.POST("", handlers.CreateWidget)
			widgets.GET("", handlers.ListWidgets)
			widgets.POST("/reorder", handlers.ReorderWidgets)
			widgets.POST("/reset_defaults", handlers.ResetWidgets)
			widgets.GET("/:id", handlers.GetWidget)
			widgets.PATCH("/:id", handlers.UpdateWidget)
			widgets.DELETE("/:id", handlers.DeleteWidget)
		}
	}

	return r
}
