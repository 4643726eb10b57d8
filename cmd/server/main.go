package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/handlers"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/repository"
	"github.com/taskhive/taskhive-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Collaborators
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)

	var uploader services.Uploader
	if cfg.StorageEndpoint != "" {
		s3, err := services.NewS3Uploader(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageSecure,
		)
		if err != nil {
			log.Fatalf("Failed to create storage client: %v", err)
		}
		uploader = s3
	}

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	authService := services.NewAuthService(userRepo, sessionRepo, otpRepo, mailer, cfg.JWTSecret)
	userService := services.NewUserService(userRepo, uploader)
	taskService := services.NewTaskService(taskRepo, userRepo, uploader, aiService)
	notificationService := services.NewNotificationService(notificationRepo, taskRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TaskHive API is running",
		})
	})

	// API routes
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/sendotp", authHandler.SendOTP)
			auth.POST("/verifyotp", authHandler.VerifyOTP)
			auth.POST("/logout", middleware.RequireAuth(authService), authHandler.Logout)
		}

		user := api.Group("/user")
		user.Use(middleware.RequireAuth(authService))
		{
			user.GET("/getuser", userHandler.GetCurrentUser)
			user.GET("/getallusers", userHandler.ListUsers)
			user.PUT("/edituser/:id", userHandler.EditUser)
			user.DELETE("/deleteuser/:id", middleware.RequireAdmin(), userHandler.DeleteUser)
			user.POST("/uploadprofile/:id", userHandler.UploadProfile)
		}

		// Stats stays public; everything else on the task group needs auth
		api.GET("/task/getstats", taskHandler.GetStats)

		task := api.Group("/task")
		task.Use(middleware.RequireAuth(authService))
		{
			task.POST("/addtask", taskHandler.CreateTask)
			task.PUT("/edittask/:id", taskHandler.EditTask)
			task.PUT("/status/:id", taskHandler.UpdateStage)
			task.PUT("/movetotrash/:id", taskHandler.MoveToTrash)
			task.PUT("/restoretrash/:id", taskHandler.RestoreTask)
			task.DELETE("/deletetask/:id", taskHandler.DeleteTask)
			task.POST("/duplicatetask/:id", taskHandler.DuplicateTask)
			task.POST("/addcomment/:id", taskHandler.AddComment)
			task.POST("/addactivity/:id", taskHandler.AddActivity)
			task.POST("/addsubtask/:id", taskHandler.AddSubTask)
			task.GET("/gettask/:id", taskHandler.GetTask)
			task.GET("/all", taskHandler.ListTasks)
			task.GET("/mytasks", taskHandler.MyTasks)
			task.POST("/uploadassets", taskHandler.UploadAsset)
			task.POST("/suggest", taskHandler.SuggestTasks)
		}

		notification := api.Group("/notification")
		notification.Use(middleware.RequireAuth(authService))
		{
			notification.POST("/createnotification", notificationHandler.CreateNotification)
			notification.GET("/getnotifications", notificationHandler.GetNotifications)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
