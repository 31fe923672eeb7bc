package rendering

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/jonathan/cv-builder/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PreviewRootID is the id of the preview's root element. Export locates the
// rendered preview by this id.
const PreviewRootID = "cv-preview"

// PageTitle is the document title of the page and of the exported PDF.
const PageTitle = "CV Builder"

// Renderer renders the page, its fragments and the print document from the
// embedded templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("cv").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse templates", Cause: err}
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Page renders the full page: form on one side, preview on the other.
func (r *Renderer) Page(doc types.Document, style types.Style, version uint64) ([]byte, error) {
	return r.execute("page", PageData{
		Title:   PageTitle,
		Version: version,
		Colors:  types.Colors(),
		Fonts:   types.Fonts(),
		Form:    BuildForm(doc),
		Preview: BuildPreview(doc, style),
	})
}

// Form renders only the form fragment.
func (r *Renderer) Form(doc types.Document) ([]byte, error) {
	return r.execute("form", BuildForm(doc))
}

// Preview renders only the preview fragment.
func (r *Renderer) Preview(doc types.Document, style types.Style) ([]byte, error) {
	return r.execute("preview", BuildPreview(doc, style))
}

// PrintDocument wraps already-sanitized preview markup in a standalone A4 page.
func (r *Renderer) PrintDocument(markup string) ([]byte, error) {
	return r.execute("print", struct {
		Title  string
		Markup template.HTML
	}{
		Title:  PageTitle,
		Markup: template.HTML(markup), //nolint:gosec // sanitized by SanitizePreview
	})
}

func (r *Renderer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, &TemplateError{Template: name, Message: "failed to execute template", Cause: err}
	}
	return buf.Bytes(), nil
}
