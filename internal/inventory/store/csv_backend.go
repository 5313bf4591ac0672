package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// Header is the column layout of the inventory table.
var Header = []string{"Product ID", "Product Name", "Stock", "Daily Demand"}

// CSVBackend persists the product table as a comma-separated file.
type CSVBackend struct {
	path string
	perm os.FileMode
}

// NewCSVBackend creates a backend for the file at path.
func NewCSVBackend(path string) *CSVBackend {
	return &CSVBackend{path: path, perm: 0o644}
}

// Path returns the location of the backing file.
func (b *CSVBackend) Path() string {
	return b.path
}

// Read loads the table from disk.
func (b *CSVBackend) Read() ([]Product, error) {
	file, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTableNotExist
		}
		return nil, fmt.Errorf("failed to open inventory file %s: %w", b.path, err)
	}
	defer file.Close()

	products, err := DecodeTable(file)
	if err != nil {
		return nil, fmt.Errorf("inventory file %s: %w", b.path, err)
	}
	return products, nil
}

// Write rewrites the whole file. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (b *CSVBackend) Write(products []Product) error {
	var buf bytes.Buffer
	if err := EncodeTable(&buf, products); err != nil {
		return err
	}
	if err := renameio.WriteFile(b.path, buf.Bytes(), b.perm); err != nil {
		return fmt.Errorf("failed to write inventory file %s: %w", b.path, err)
	}
	return nil
}

// DecodeTable parses a table with the Header columns.
func DecodeTable(r io.Reader) ([]Product, error) {
	reader := csv.NewReader(r)
	// column counts are checked per row below to report the row number
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("inventory CSV has no header row")
	}
	if !validateHeader(records[0]) {
		return nil, fmt.Errorf("inventory CSV header mismatch. Expected: %v, Got: %v", Header, records[0])
	}

	products := make([]Product, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(Header) {
			return nil, fmt.Errorf("inventory CSV row %d: expected %d columns, got %d", i+2, len(Header), len(record))
		}
		product, err := parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// EncodeTable writes products as a table with the Header columns.
func EncodeTable(w io.Writer, products []Product) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write inventory CSV header: %w", err)
	}
	for _, p := range products {
		record := []string{p.ID, p.Name, strconv.Itoa(p.Stock), strconv.Itoa(p.DailyDemand)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write inventory CSV row for %q: %w", p.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func validateHeader(got []string) bool {
	if len(got) != len(Header) {
		return false
	}
	for i, column := range got {
		column = strings.TrimPrefix(column, "\ufeff")
		if strings.TrimSpace(column) != Header[i] {
			return false
		}
	}
	return true
}

func parseProduct(record []string) (Product, error) {
	stock, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return Product{}, fmt.Errorf("invalid stock %q: %w", record[2], err)
	}
	demand, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return Product{}, fmt.Errorf("invalid daily demand %q: %w", record[3], err)
	}
	return Product{
		ID:          record[0],
		Name:        record[1],
		Stock:       stock,
		DailyDemand: demand,
	}, nil
}
