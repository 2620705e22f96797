// Package server exposes the listing and mutation operations over HTTP.
package server

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hammamikhairi/recipedesk/internal/logger"
	"github.com/hammamikhairi/recipedesk/internal/view"
)

// Option configures the app.
type Option func(*options)

type options struct {
	rateLimit int
	validator *validator.Validate
}

// WithRateLimit caps requests per second per client. Zero disables the
// limiter.
func WithRateLimit(perSecond int) Option {
	return func(o *options) { o.rateLimit = perSecond }
}

// WithValidator overrides the body validator.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) { o.validator = v }
}

// DefaultRateLimit is the per-client request cap per second.
const DefaultRateLimit = 50

// New builds the fiber app with middleware and routes installed.
func New(records Records, mutator Mutator, pipeline *view.Pipeline, log *logger.Logger, opts ...Option) *fiber.App {
	o := options{rateLimit: DefaultRateLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.validator == nil {
		o.validator = newValidator()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${status} ${method} ${path} ${latency}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     log.Writer(),
	}))
	if o.rateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        o.rateLimit,
			Expiration: 1 * time.Second,
		}))
	}

	routes := Routes{
		App:           app,
		RecipeHandler: NewRecipeHandler(records, mutator, pipeline, o.validator, log),
	}
	routes.Setup()
	return app
}
