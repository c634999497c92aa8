package handlers

import (
	"bytes"
	"context"
	"errors"
	"time"

	"patient-intake-service/internal/forms/patients"
	"patient-intake-service/internal/logging"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FormPageHandler serves the server-rendered intake form.
type FormPageHandler struct {
	sessions *FormSessions
	renderer *PageRenderer
	timeout  time.Duration
	logger   *zap.Logger
}

func NewFormPageHandler(sessions *FormSessions, renderer *PageRenderer, timeout time.Duration, logger *zap.Logger) *FormPageHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FormPageHandler{
		sessions: sessions,
		renderer: renderer,
		timeout:  timeout,
		logger:   logging.OrNop(logger).Named("patients_page"),
	}
}

// session returns the caller's form, mounting it when the session is new.
func (h *FormPageHandler) session(c *fiber.Ctx) (*patients.PatientForm, string, error) {
	id, form, created, err := h.sessions.Get(c)
	if err != nil {
		h.logger.Error("form session unavailable", zap.Error(err))
		return nil, "", fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}
	if !created {
		return form, "", nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()
	if err := form.Mount(ctx); err != nil {
		h.logger.Warn("patient list unavailable", zap.String("session", id), zap.Error(err))
		return form, "Não foi possível carregar os pacientes", nil
	}
	return form, "", nil
}

// applyFields copies posted values into the form. Fields absent from the request are left alone.
func applyFields(c *fiber.Ctx, form *patients.PatientForm) {
	args := c.Request().PostArgs()
	if args.Has(string(patients.FieldName)) {
		form.SetName(c.FormValue(string(patients.FieldName)))
	}
	if args.Has(string(patients.FieldEmail)) {
		form.SetEmail(c.FormValue(string(patients.FieldEmail)))
	}
}

func (h *FormPageHandler) Show(c *fiber.Ctx) error {
	form, loadErr, err := h.session(c)
	if err != nil {
		return err
	}
	return h.render(c, fiber.StatusOK, form, loadErr)
}

func (h *FormPageHandler) Input(c *fiber.Ctx) error {
	form, loadErr, err := h.session(c)
	if err != nil {
		return err
	}
	applyFields(c, form)
	return h.render(c, fiber.StatusOK, form, loadErr)
}

func (h *FormPageHandler) Clear(c *fiber.Ctx) error {
	form, loadErr, err := h.session(c)
	if err != nil {
		return err
	}
	form.Clear()
	return h.render(c, fiber.StatusOK, form, loadErr)
}

// Submit answers with the store's status and, after a 2xx, reloads the patient list.
func (h *FormPageHandler) Submit(c *fiber.Ctx) error {
	form, loadErr, err := h.session(c)
	if err != nil {
		return err
	}
	applyFields(c, form)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	result, err := form.Submit(ctx)
	switch {
	case errors.Is(err, patients.ErrFormInvalid):
		return h.render(c, fiber.StatusBadRequest, form, patients.SubmitHintInvalid)
	case err != nil:
		h.logger.Error("form submit failed", zap.Error(err))
		return h.render(c, fiber.StatusInternalServerError, form, "Erro ao cadastrar paciente")
	}

	if result.OK() {
		if err := form.Reload(ctx); err != nil {
			loadErr = "Não foi possível carregar os pacientes"
		} else {
			loadErr = ""
		}
	}
	return h.render(c, result.Status, form, loadErr)
}

// render shows the form's latest submit result until the form is cleared.
func (h *FormPageHandler) render(c *fiber.Ctx, status int, form *patients.PatientForm, errMsg string) error {
	data := pageData{
		State:    form.State(),
		Button:   form.SubmitButton(),
		Patients: form.Patients(),
		Error:    errMsg,
	}
	if last, ok := form.LastResult(); ok {
		data.Result = &last
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, data); err != nil {
		h.logger.Error("render patients page", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "render failed")
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func RegisterFormPageRoutes(app *fiber.App, h *FormPageHandler) {
	page := app.Group("/patients")
	page.Get("/", h.Show)
	page.Post("/input", h.Input)
	page.Post("/clear", h.Clear)
	page.Post("/submit", h.Submit)
}
