package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hammamikhairi/recipedesk/internal/form"
)

// Routes wires handlers to paths.
type Routes struct {
	App           *fiber.App
	RecipeHandler RecipeHandler
}

func (r *Routes) Setup() {
	r.GuestRoute()
	r.Recipes()
}

func (r *Routes) GuestRoute() {
	r.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (r *Routes) Recipes() {
	recipes := r.App.Group("/api/recipes")
	{
		recipes.Get("/", r.RecipeHandler.List)
		recipes.Get("/:id", r.RecipeHandler.Get)
		recipes.Post("/", r.RecipeHandler.Create)
		recipes.Patch("/:id", r.RecipeHandler.Update)
		recipes.Delete("/:id", r.RecipeHandler.Delete)
	}
}

func newValidator() *validator.Validate { return form.NewValidator() }
