package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"listing-vault/core/loader"
	"listing-vault/core/logger"
	"listing-vault/core/middleware/auth"
	"listing-vault/core/middleware/rayid"
	"listing-vault/feature/archive"
	"listing-vault/feature/extraction"
	"listing-vault/feature/vault"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the listing vault server",
	Long:  `Starts the HTTP server exposing the vault's operations to UI clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		zap.ReplaceGlobals(a.logger)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		mgr := loader.NewManager()
		mgr.Register(vault.NewFeature(a.vault, a.logger))
		mgr.Register(extraction.NewFeature(a.extraction, a.logger))
		mgr.Register(archive.NewFeature(a.archive, a.logger))

		// RayID must come first so every log line is traceable.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(a.logger, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			a.logger.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			a.logger.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				a.logger.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		a.logger.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
