package v1

import (
	"tasktracker/internal/api/response"
	"tasktracker/internal/api/v1/handlers"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// NewApp builds the fiber app with the middleware stack and every route.
func NewApp(deps *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "tasktracker",
		ErrorHandler: response.Handler,
	})

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: deps.Config.CORSOrigins != "*",
	}))
	if deps.Config.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.Config.RateLimitMax,
			Expiration: deps.Config.RateLimitWindow,
			LimitReached: func(c *fiber.Ctx) error {
				return response.Error(c, fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later"))
			},
		}))
	}

	RegisterRoutes(app, deps)
	return app
}

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	auth := handlers.NewAuthHandler(deps.AuthService)
	users := handlers.NewUserHandler(deps.UserService)
	tasks := handlers.NewTaskHandler(deps.TaskService)
	requireAuth := middleware.RequireAuth(deps.Tokens, deps.UserService)

	app.Get("/", handlers.Root)
	api := app.Group("/api/v1")
	api.Get("/health", handlers.Health)

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", auth.Register)
	authRoutes.Post("/login", auth.Login)
	authRoutes.Get("/me", requireAuth, auth.Me)
	authRoutes.Put("/profile", requireAuth, auth.UpdateProfile)
	authRoutes.Put("/change-password", requireAuth, auth.ChangePassword)

	// User
	userRoutes := api.Group("/users", requireAuth)
	userRoutes.Get("/", users.GetAllUsers)
	userRoutes.Post("/", middleware.RequireAdmin, users.CreateUser)
	userRoutes.Get("/:id", users.GetUser)
	userRoutes.Put("/:id", middleware.RequireAdmin, users.UpdateUser)
	userRoutes.Delete("/:id", middleware.RequireAdmin, users.DeleteUser)

	// Task; /stats sebelum /:id
	taskRoutes := api.Group("/tasks", requireAuth)
	taskRoutes.Get("/stats", tasks.TaskStats)
	taskRoutes.Get("/", tasks.ListTasks)
	taskRoutes.Post("/", tasks.CreateTask)
	taskRoutes.Get("/:id", tasks.GetTask)
	taskRoutes.Put("/:id", tasks.UpdateTask)
	taskRoutes.Delete("/:id", tasks.DeleteTask)
	taskRoutes.Patch("/:id/toggle-complete", tasks.ToggleTask)

	// WebSocket
	api.Get("/ws", requireAuth, handlers.RequireUpgrade, handlers.TaskEvents(deps.Hub))

	app.Use(middleware.NotFound)
}
