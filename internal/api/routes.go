package api

import (
	"github.com/draftpress/draftpress/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, adminAPIKey string) {
	// API group with versioning
	api := app.Group("/api/v1")

	// Health check endpoint
	api.Get("/health", handlers.HealthCheck)

	// Public post endpoints
	posts := api.Group("/posts")
	{
		posts.Get("", handlers.ListPosts)
		posts.Get("/:id", handlers.GetPost)
		posts.Get("/:id/comments", handlers.ListComments)
		posts.Post("/:id/comments", handlers.CreateComment)
		posts.Post("/:id/reactions", handlers.ReactToPost)
	}

	api.Get("/categories", handlers.ListCategories)

	// Admin endpoints, API-key gated
	admin := api.Group("/admin", middleware.AdminOnly(adminAPIKey))
	{
		admin.Post("/posts", handlers.CreatePost)
		admin.Put("/posts/:id", handlers.UpdatePost)
		admin.Delete("/posts/:id", handlers.DeletePost)

		admin.Post("/categories", handlers.CreateCategory)

		admin.Post("/suggestions/generate", handlers.GenerateSuggestions)
		admin.Get("/suggestions", handlers.ListSuggestions)
		admin.Post("/suggestions/:id/approve", handlers.ApproveSuggestion)
		admin.Post("/suggestions/:id/publish", handlers.PublishSuggestion)
		admin.Post("/suggestions/:id/reject", handlers.RejectSuggestion)
		admin.Delete("/suggestions/:id", handlers.DeleteSuggestion)

		admin.Get("/scheduler", handlers.SchedulerStatus)
		admin.Post("/scheduler/start", handlers.StartScheduler)
		admin.Post("/scheduler/stop", handlers.StopScheduler)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
