package handlers

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"patient-intake-service/internal/domain/dtos"
	"patient-intake-service/internal/forms/patients"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFiles embed.FS

const patientsPageTemplate = "patients.html"

// PageRenderer renders the intake page from the embedded templates.
type PageRenderer struct {
	page *pongo2.Template
}

func NewPageRenderer() (*PageRenderer, error) {
	files, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("page templates: %w", err)
	}
	set := pongo2.NewSet("patients", pongo2.NewFSLoader(files))
	page, err := set.FromFile(patientsPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", patientsPageTemplate, err)
	}
	return &PageRenderer{page: page}, nil
}

type pageData struct {
	State    patients.FormState
	Button   patients.ButtonState
	Patients []dtos.PatientDTO
	Result   *dtos.SubmitResult
	Error    string
}

// Render writes the page. Values are HTML-escaped by the template engine.
func (r *PageRenderer) Render(w io.Writer, data pageData) error {
	list := make([]map[string]any, 0, len(data.Patients))
	for _, p := range data.Patients {
		list = append(list, map[string]any{"name": p.Name, "email": p.Email})
	}

	ctx := pongo2.Context{
		"state": map[string]any{
			"name":  data.State.Name,
			"email": data.State.Email,
		},
		"button": map[string]any{
			"title":    data.Button.Title,
			"disabled": data.Button.Disabled,
		},
		"patients": list,
		"error":    data.Error,
	}
	if data.Result != nil {
		ctx["result"] = map[string]any{"status": data.Result.Status, "message": data.Result.Message}
	}

	if err := r.page.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("render %q: %w", patientsPageTemplate, err)
	}
	return nil
}
