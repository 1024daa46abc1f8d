package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"naver-market-research/models"
)

// CSVExporter writes search results and annotations to CSV files, the
// spreadsheet-shaped artifacts analysts pass around.
type CSVExporter struct {
	dir string
}

// NewCSVExporter creates the output directory if needed.
func NewCSVExporter(outputPath string) (*CSVExporter, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVExporter{dir: dir}, nil
}

// ExportProducts writes one row per product to path, in search rank order.
func (e *CSVExporter) ExportProducts(path string, products []*models.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"rank", "title", "lprice", "hprice", "brand", "maker",
		"mall_name", "category", "product_id", "link",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for i, p := range products {
		row := []string{
			strconv.Itoa(i + 1),
			p.Title,
			strconv.Itoa(p.LPrice),
			strconv.Itoa(p.HPrice),
			p.Brand,
			p.Maker,
			p.MallName,
			p.CategoryPath(),
			p.ProductID,
			p.Link,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ExportAnnotations writes the flattened annotation set to path with the same
// column layout as the shared research sheet: keyword, product_id,
// product_name, features. Empty annotations are skipped; rows are sorted for
// a stable diff-friendly file.
func (e *CSVExporter) ExportAnnotations(path string, set models.AnnotationSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"keyword", "product_id", "product_name", "features"}); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	var rows [][]string
	for keyword, byProduct := range set {
		for productID, ann := range byProduct {
			if ann.Empty() {
				continue
			}
			rows = append(rows, []string{keyword, productID, ann.Name, ann.Features})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i][0] != rows[j][0] {
			return rows[i][0] < rows[j][0]
		}
		return rows[i][1] < rows[j][1]
	})

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
