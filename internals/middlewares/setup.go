package middlewares

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/google/uuid"

	"leadcrm_backend/internals/configs"
	"leadcrm_backend/internals/middlewares/logger"
)

// RequestContext sets X-Request-ID and bounds every handler with a timeout
// aligned with the database statement_timeout.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// SetupMiddlewares installs the global chain, outermost first.
// RATE_LIMIT_PER_MINUTE=0 turns the limiters off.
func SetupMiddlewares(app *fiber.App, cfg configs.Config) {
	log.Println("[INFO] Setting up middlewares...")
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(5 * time.Second))
	app.Use(logger.LoggerMiddleware(cfg.Timezone))
	app.Use(CorsMiddleware(cfg.CORSAllowOrigins))
	if cfg.RateLimitPerMinute > 0 {
		app.Use(GlobalRateLimiter(cfg.RateLimitPerMinute))
	}
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
}
