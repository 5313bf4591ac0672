package report

import (
	"io"

	"github.com/abgdnv/stockguard/internal/inventory/store"
)

// CSVRenderer exports the snapshot in the backing-file format.
type CSVRenderer struct{}

func (CSVRenderer) Format() string {
	return FormatCSV
}

func (CSVRenderer) Render(w io.Writer, rows []Row, _ Meta) error {
	products := make([]store.Product, len(rows))
	for i, row := range rows {
		products[i] = row.Product
	}
	return store.EncodeTable(w, products)
}
