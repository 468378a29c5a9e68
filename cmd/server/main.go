package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/project-management-api/internal/config"
	"github.com/taskhive/project-management-api/internal/database"
	"github.com/taskhive/project-management-api/internal/handlers"
	"github.com/taskhive/project-management-api/internal/middleware"
	"github.com/taskhive/project-management-api/internal/repository"
	"github.com/taskhive/project-management-api/internal/services"
	"github.com/taskhive/project-management-api/internal/token"
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
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Services
	tokenService := token.NewService(cfg.JWTSecret, cfg.TokenLifetime)
	authService := services.NewAuthService(userRepo, tokenService)
	permissionService := services.NewPermissionService(projectRepo)
	projectService := services.NewProjectService(projectRepo)
	memberService := services.NewMemberService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	memberHandler := handlers.NewMemberHandler(memberService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Middleware
	requireAuth := middleware.RequireAuth(tokenService, userRepo)
	requireView := middleware.RequireProjectPermission(permissionService, services.ActionView)
	requireCreateTask := middleware.RequireProjectPermission(permissionService, services.ActionCreateTask)
	requireManageMembers := middleware.RequireProjectPermission(permissionService, services.ActionManageMembers)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", requireView, projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)

			// Membership routes, scoped by project
			projects.GET("/:id/members", requireView, memberHandler.ListMembers)
			projects.POST("/:id/members", requireManageMembers, memberHandler.AddMember)
			projects.PATCH("/:id/members/:user_id", requireManageMembers, memberHandler.UpdateMember)
			projects.DELETE("/:id/members/:user_id", requireManageMembers, memberHandler.RemoveMember)

			// Task collection routes, scoped by project
			projects.GET("/:id/tasks", requireView, taskHandler.ListTasks)
			projects.POST("/:id/tasks", requireCreateTask, taskHandler.CreateTask)
		}

		// Task routes (protected, scoped by the task's project)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/:id", middleware.RequireTaskPermission(permissionService, taskRepo, services.ActionView), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskPermission(permissionService, taskRepo, services.ActionUpdateTask), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskPermission(permissionService, taskRepo, services.ActionDeleteTask), taskHandler.DeleteTask)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
