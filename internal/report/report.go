// Package report renders inventory snapshots into documents and flat-file exports.
package report

import (
	"errors"
	"io"
	"time"

	"github.com/abgdnv/stockguard/internal/inventory/risk"
	"github.com/abgdnv/stockguard/internal/inventory/store"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

var (
	// ErrRendererUnavailable is returned when no enabled renderer handles the requested format.
	ErrRendererUnavailable = errors.New("report renderer unavailable")
	// ErrNothingToReport is returned when the snapshot holds no products.
	ErrNothingToReport = errors.New("no products to report")
)

// Row is one product of a report together with its risk tier.
type Row struct {
	store.Product
	Tier risk.Tier
}

// Meta describes the report as a whole.
type Meta struct {
	GeneratedAt time.Time
	LowLimit    int
}

// Renderer writes rows in a single output format.
type Renderer interface {
	// Format is the short name the renderer is registered under, e.g. "pdf".
	Format() string

	// Render writes the complete report to w.
	Render(w io.Writer, rows []Row, meta Meta) error
}
