package rendering

import (
	"bytes"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

// previewSanitizer keeps the structural tags the preview template emits and
// only the inline styles the style pickers produce.
func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("div", "section", "h1", "h2", "h3", "p", "ul", "ol", "li", "span", "strong", "em", "br")
		p.AllowAttrs("id", "class").Globally()
		p.AllowAttrs("data-section").OnElements("section")
		p.AllowStyles("color", "font-family", "border-color").Globally()
		previewPolicy = p
	})
	return previewPolicy
}

// PreviewRoot returns the outer HTML of the preview root element of a
// rendered page.
func PreviewRoot(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", &RenderError{Message: "failed to parse rendered page", Cause: err}
	}

	root := doc.Find("#" + PreviewRootID).First()
	if root.Length() == 0 {
		return "", &RenderError{Message: "preview root #" + PreviewRootID + " not found"}
	}

	html, err := goquery.OuterHtml(root)
	if err != nil {
		return "", &RenderError{Message: "failed to serialize preview root", Cause: err}
	}
	return html, nil
}

// SanitizePreview strips everything from preview markup that the preview
// template never produces, such as scripts and event handlers.
func SanitizePreview(markup string) string {
	return previewSanitizer().Sanitize(markup)
}

// ExportMarkup turns a rendered page into the print document handed to the
// PDF rasterizer: the preview root is extracted, sanitized and wrapped.
func (r *Renderer) ExportMarkup(page []byte) (string, error) {
	root, err := PreviewRoot(page)
	if err != nil {
		return "", err
	}
	out, err := r.PrintDocument(SanitizePreview(root))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
