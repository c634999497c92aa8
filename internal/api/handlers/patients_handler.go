package handlers

import (
	"context"
	"errors"
	"time"

	"patient-intake-service/internal/domain/dtos"
	"patient-intake-service/internal/domain/repositories"
	"patient-intake-service/internal/logging"
	"patient-intake-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PatientsHandler serves the JSON patient API.
type PatientsHandler struct {
	patientService services.PatientServiceContract
	timeout        time.Duration
	logger         *zap.Logger
}

func NewPatientsHandler(ps services.PatientServiceContract, timeout time.Duration, logger *zap.Logger) *PatientsHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PatientsHandler{
		patientService: ps,
		timeout:        timeout,
		logger:         logging.OrNop(logger).Named("patients_api"),
	}
}

func (h *PatientsHandler) ListPatients(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	patients, err := h.patientService.LoadPatients(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao carregar pacientes: " + err.Error(),
		})
	}
	return c.JSON(patients)
}

func (h *PatientsHandler) GetPatient(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	patient, err := h.patientService.GetPatient(ctx, c.Params("id"))
	if errors.Is(err, repositories.ErrPatientNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Paciente não encontrado"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(patient)
}

func (h *PatientsHandler) DeletePatient(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	err := h.patientService.DeletePatient(ctx, c.Params("id"))
	if errors.Is(err, repositories.ErrPatientNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Paciente não encontrado"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPatient forwards the store's SubmitResult status as the HTTP status.
func (h *PatientsHandler) AddPatient(c *fiber.Ctx) error {
	var req dtos.CreatePatientRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Info("unparsable add patient body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Não foi possível parsear a requisição: " + err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	result, err := h.patientService.AddPatient(ctx, req)
	if err != nil {
		h.logger.Error("add patient failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Erro ao adicionar paciente: " + err.Error(),
		})
	}
	return c.Status(result.Status).JSON(result)
}

func RegisterPatientRoutes(app *fiber.App, h *PatientsHandler) {
	api := app.Group("/api/patients")
	api.Get("/", h.ListPatients)
	api.Post("/", h.AddPatient)
	api.Get("/:id", h.GetPatient)
	api.Delete("/:id", h.DeletePatient)
}

// RegisterHealthRoute adds GET /healthz.
func RegisterHealthRoute(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
