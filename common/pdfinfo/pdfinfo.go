package pdfinfo

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Inspector runs pre-flight checks on uploaded PDFs before they reach the
// external tool, so corrupt input is rejected as a client error instead of
// surfacing as a tool failure.
type Inspector struct {
	conf *model.Configuration
}

// New creates an inspector with relaxed validation, matching what most
// real-world PDFs survive.
func New() *Inspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: conf}
}

// Validate checks structural integrity of the PDF at path
func (i *Inspector) Validate(path string) error {
	if err := api.ValidateFile(path, i.conf); err != nil {
		return fmt.Errorf("pdf validation: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF at path
func (i *Inspector) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count: %w", err)
	}
	return n, nil
}
