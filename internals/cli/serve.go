package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	database "leadcrm_backend/internals/databases"
	helper "leadcrm_backend/internals/helpers"
	middlewares "leadcrm_backend/internals/middlewares"
	routes "leadcrm_backend/internals/route"
)

// NewApp is the fiber app with the JSON codec and error envelope every handler relies on.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return helper.JsonError(c, fe.Code, fe.Message)
			}
			log.Printf("[ERROR] unhandled: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "")
		},
	})
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Connect, migrate, mount routes and serve until SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is required to serve")
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}

			app := NewApp()
			middlewares.SetupMiddlewares(app, cfg)
			routes.SetupRoutes(app, db, cfg, nil)

			// keep-alive and connection timeouts
			app.Server().ReadTimeout = 15 * time.Second
			app.Server().WriteTimeout = 30 * time.Second
			app.Server().IdleTimeout = 90 * time.Second

			if cfg.RequireCheckedIn {
				fmt.Printf("%s distribution only to checked-in staff\n", warnMark)
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("✅ Listening on :%s", cfg.Port)
				errCh <- app.Listen("0.0.0.0:" + cfg.Port)
			}()

			// graceful shutdown; the pool is closed by the deferred Close
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-quit:
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.ShutdownWithContext(ctx)
		},
	}
}
