package main

import (
	"fmt"
	"time"

	"patient-intake-service/internal/adapters"
	"patient-intake-service/internal/config"
	"patient-intake-service/internal/database"
	"patient-intake-service/internal/domain/repositories"
	"patient-intake-service/internal/forms/patients"
	"patient-intake-service/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// components is everything a front-end needs, built from one config.
type components struct {
	db        *gorm.DB
	queue     *adapters.InMemoryQueueAdapter
	service   services.PatientServiceContract
	consumer  *services.PatientEventConsumer
	emailRule patients.Rule
	timeout   time.Duration
}

func buildComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	emailRule, ok := patients.EmailRuleByName(cfg.Form.EmailRule)
	if !ok {
		return nil, fmt.Errorf("unknown email rule %q", cfg.Form.EmailRule)
	}
	timeout, err := time.ParseDuration(cfg.HTTP.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("http.request_timeout: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	queue := adapters.NewInMemoryQueueAdapter(cfg.Events.Buffer, logger)
	repo := repositories.NewPatientRepository(db)

	return &components{
		db:        db,
		queue:     queue,
		service:   services.NewPatientService(repo, queue, logger),
		consumer:  services.NewPatientEventConsumer(queue, cfg.Events.Workers, cfg.Events.Buffer, nil, logger),
		emailRule: emailRule,
		timeout:   timeout,
	}, nil
}

func (c *components) newForm(logger *zap.Logger) *patients.PatientForm {
	return patients.NewPatientForm(c.service,
		patients.WithEmailRule(c.emailRule),
		patients.WithLogger(logger),
	)
}

func (c *components) close() error {
	_ = c.queue.Close()
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
