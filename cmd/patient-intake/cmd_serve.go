package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"patient-intake-service/internal/api/handlers"
	"patient-intake-service/internal/forms/patients"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const formSessionTTL = 2 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the intake form page and the patient API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := buildComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer comps.close()

	app, err := newFiberApp(comps, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if err := comps.consumer.Start(gctx); err != nil {
		return err
	}

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		return app.Listen(cfg.HTTP.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return comps.consumer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newFiberApp(comps *components, logger *zap.Logger) (*fiber.App, error) {
	renderer, err := handlers.NewPageRenderer()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "patient-intake",
		DisableStartupMessage: true,
		ReadTimeout:           comps.timeout,
		WriteTimeout:          comps.timeout,
	})

	sessions := handlers.NewFormSessions(func() *patients.PatientForm {
		return comps.newForm(logger)
	}, formSessionTTL)

	handlers.RegisterHealthRoute(app)
	handlers.RegisterPatientRoutes(app, handlers.NewPatientsHandler(comps.service, comps.timeout, logger))
	handlers.RegisterFormPageRoutes(app, handlers.NewFormPageHandler(sessions, renderer, comps.timeout, logger))
	return app, nil
}
