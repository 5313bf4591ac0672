package report

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/stockguard/internal/inventory/risk"
	"github.com/abgdnv/stockguard/internal/inventory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func sampleRows() []Row {
	return []Row{
		{Product: store.Product{ID: "P1", Name: "Widget", Stock: 5, DailyDemand: 2}, Tier: risk.HighRisk},
		{Product: store.Product{ID: "P2", Name: "Gadget, large", Stock: 20, DailyDemand: 15}, Tier: risk.MediumRisk},
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "pdf", format: FormatPDF, want: "inventory_report_20250102_030405.pdf"},
		{name: "csv", format: FormatCSV, want: "inventory_export_20250102_030405.csv"},
		{name: "other", format: "xlsx", want: "inventory_xlsx_20250102_030405.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.format, fixedTime))
		})
	}
}

func TestCSVRenderer_Render(t *testing.T) {
	// given
	var buf bytes.Buffer
	// when
	err := CSVRenderer{}.Render(&buf, sampleRows(), Meta{})
	// then
	require.NoError(t, err)
	want := "Product ID,Product Name,Stock,Daily Demand\nP1,Widget,5,2\nP2,\"Gadget, large\",20,15\n"
	assert.Equal(t, want, buf.String())
}

func TestPDFRenderer_Render(t *testing.T) {
	// given
	var buf bytes.Buffer
	// when
	err := PDFRenderer{}.Render(&buf, sampleRows(), Meta{GeneratedAt: fixedTime, LowLimit: 10})
	// then
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestPDFRenderer_PageBreak(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		wantPages int
	}{
		{name: "single page", rows: 2, wantPages: 1},
		{name: "overflow", rows: 40, wantPages: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			rows := make([]Row, tt.rows)
			for i := range rows {
				rows[i] = Row{Product: store.Product{ID: "P", Name: "Item", Stock: i, DailyDemand: 1}, Tier: risk.Safe}
			}
			// when
			pdf := PDFRenderer{}.layout(rows, Meta{GeneratedAt: fixedTime, LowLimit: 10})
			// then
			require.NoError(t, pdf.Error())
			assert.Equal(t, tt.wantPages, pdf.PageCount())
		})
	}
}

func TestRegistry_Export(t *testing.T) {
	tests := []struct {
		name     string
		renderer Renderer
		format   string
		wantFile string
	}{
		{name: "pdf", renderer: PDFRenderer{}, format: FormatPDF, wantFile: "inventory_report_20250102_030405.pdf"},
		{name: "csv", renderer: CSVRenderer{}, format: FormatCSV, wantFile: "inventory_export_20250102_030405.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			dir := filepath.Join(t.TempDir(), "reports")
			registry := NewRegistry(dir, WithClock(func() time.Time { return fixedTime }))
			registry.Register(tt.renderer)
			// when
			path, err := registry.Export(tt.format, sampleRows(), Meta{LowLimit: 10})
			// then
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.wantFile), path)
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestRegistry_Export_Unavailable(t *testing.T) {
	// given
	registry := NewRegistry(t.TempDir())
	registry.Register(CSVRenderer{})
	// when
	_, err := registry.Export(FormatPDF, sampleRows(), Meta{})
	// then
	assert.ErrorIs(t, err, ErrRendererUnavailable)
	assert.False(t, registry.Available(FormatPDF))
	assert.True(t, registry.Available(FormatCSV))
	assert.Equal(t, []string{FormatCSV}, registry.Formats())
}

func TestRegistry_Export_Empty(t *testing.T) {
	// given
	dir := t.TempDir()
	registry := NewRegistry(dir)
	registry.Register(CSVRenderer{})
	// when
	_, err := registry.Export(FormatCSV, nil, Meta{})
	// then
	assert.ErrorIs(t, err, ErrNothingToReport)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingRenderer struct{}

func (failingRenderer) Format() string { return "broken" }

func (failingRenderer) Render(io.Writer, []Row, Meta) error {
	return errors.New("boom")
}

func TestRegistry_Export_RenderFailureWritesNothing(t *testing.T) {
	// given
	dir := t.TempDir()
	registry := NewRegistry(dir)
	registry.Register(failingRenderer{})
	// when
	_, err := registry.Export("broken", sampleRows(), Meta{})
	// then
	assert.EqualError(t, err, "boom")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
